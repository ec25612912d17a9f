package models

// Lecture is a scheduled class session.
type Lecture struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Topic       string `json:"topic"`
	Time        string `json:"time"`
	Room        string `json:"room"`
	TeacherName string `json:"teacherName"`
}
