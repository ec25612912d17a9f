package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/models"
)

func TestAttendanceDatasetOrdersByTopicThenStudent(t *testing.T) {
	data := models.AttendanceData{
		"topic_2": {Title: "Vectors", Date: "2024-03-02", Students: map[string]models.AttendanceStatus{
			"zoe@campus.edu": models.AttendancePresent,
		}},
		"topic_1": {Title: "Intro", Date: "2024-03-01", Students: map[string]models.AttendanceStatus{
			"mia@campus.edu": models.AttendanceAbsent,
			"ada@campus.edu": models.AttendancePresent,
		}},
	}

	dataset := AttendanceDataset(data)
	require.Len(t, dataset.Rows, 3)
	assert.Equal(t, attendanceReportHeaders, dataset.Headers)
	assert.Equal(t, "ada@campus.edu", dataset.Rows[0]["Student"])
	assert.Equal(t, "mia@campus.edu", dataset.Rows[1]["Student"])
	assert.Equal(t, "topic_2", dataset.Rows[2]["Topic ID"])
	assert.Equal(t, string(models.AttendanceAbsent), dataset.Rows[1]["Status"])
}

func TestAttendanceDatasetEmpty(t *testing.T) {
	dataset := AttendanceDataset(models.AttendanceData{})
	assert.Empty(t, dataset.Rows)
	assert.Len(t, dataset.Headers, 5)
}
