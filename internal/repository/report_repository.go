package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/campus-hub-api/internal/models"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("record not found")

// ReportRepository persists report job metadata in the collection store.
type ReportRepository struct {
	store CollectionStore
	key   string
	mu    sync.Mutex
}

// NewReportRepository constructs the repository.
func NewReportRepository(store CollectionStore, prefix string) *ReportRepository {
	return &ReportRepository{store: store, key: prefix + CollectionReports}
}

func (r *ReportRepository) all(ctx context.Context) ([]models.ReportJob, error) {
	var jobs []models.ReportJob
	if err := r.store.Load(ctx, r.key, &jobs); err != nil && !errors.Is(err, ErrCollectionMissing) {
		return nil, fmt.Errorf("load report jobs: %w", err)
	}
	return jobs, nil
}

// Create stores a new report job with generated defaults.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs, err := r.all(ctx)
	if err != nil {
		return err
	}
	jobs = append(jobs, *job)
	if err := r.store.Save(ctx, r.key, jobs); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID returns a job by its identifier.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			job := jobs[i]
			return &job, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateReportJobParams defines the mutable fields.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job.
func (r *ReportRepository) Update(ctx context.Context, id string, params UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs, err := r.all(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range jobs {
		if jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	job := &jobs[idx]
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *params.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if params.FinishedAt != nil {
		finished := *params.FinishedAt
		job.FinishedAt = &finished
	}
	if err := r.store.Save(ctx, r.key, jobs); err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	return nil
}

// ListQueued returns queued jobs oldest first (used for cold start recovery).
func (r *ReportRepository) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.filter(ctx, limit, func(job models.ReportJob) bool {
		return job.Status == models.ReportStatusQueued
	})
}

// ListFinishedBefore returns finished jobs completed before cutoff.
func (r *ReportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.filter(ctx, limit, func(job models.ReportJob) bool {
		return job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff)
	})
}

// Remove deletes jobs by id.
func (r *ReportRepository) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs, err := r.all(ctx)
	if err != nil {
		return err
	}
	kept := jobs[:0]
	for _, job := range jobs {
		if _, ok := drop[job.ID]; !ok {
			kept = append(kept, job)
		}
	}
	if err := r.store.Save(ctx, r.key, kept); err != nil {
		return fmt.Errorf("remove report jobs: %w", err)
	}
	return nil
}

func (r *ReportRepository) filter(ctx context.Context, limit int, keep func(models.ReportJob) bool) ([]models.ReportJob, error) {
	r.mu.Lock()
	jobs, err := r.all(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]models.ReportJob, 0)
	for _, job := range jobs {
		if keep(job) {
			out = append(out, job)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
