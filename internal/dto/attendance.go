package dto

import "github.com/noah-isme/campus-hub-api/internal/models"

// RecordAttendanceRequest captures POST /attendance payload.
// StudentEmail is honoured for privileged callers only.
type RecordAttendanceRequest struct {
	Status       models.AttendanceStatus `json:"status" validate:"required,max=32"`
	StudentEmail string                  `json:"studentEmail" validate:"omitempty,email"`
}

// OpenTopicRequest captures POST /attendance/topics payload.
type OpenTopicRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse exposes the attendance data with the active topic.
type AttendanceResponse struct {
	CurrentTopic string                `json:"currentTopic"`
	Topics       models.AttendanceData `json:"topics"`
}

// AttendancePercentResponse carries a student's attendance percentage.
type AttendancePercentResponse struct {
	Student string `json:"student"`
	Percent int    `json:"percent"`
}
