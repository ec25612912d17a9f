package dto

import "github.com/noah-isme/campus-hub-api/internal/models"

// DashboardResponse bundles everything the board screen renders for one session.
type DashboardResponse struct {
	View              models.ActiveView `json:"view"`
	Filter            models.FeedFilter `json:"filter"`
	Feed              []models.Post     `json:"feed"`
	AttendancePercent int               `json:"attendancePercent"`
	CurrentTopic      string            `json:"currentTopic"`
	Alerts            []models.Alert    `json:"alerts"`
	Lectures          []models.Lecture  `json:"lectures"`
}
