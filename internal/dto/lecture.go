package dto

// LectureRequest captures POST /lectures payload. Missing subject or time makes the call a no-op.
type LectureRequest struct {
	Subject string `json:"subject" validate:"max=120"`
	Topic   string `json:"topic" validate:"max=200"`
	Time    string `json:"time" validate:"max=64"`
	Room    string `json:"room" validate:"max=64"`
}
