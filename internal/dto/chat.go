package dto

// AskDoubtRequest captures POST /doubts payload.
type AskDoubtRequest struct {
	Question string `json:"question" validate:"max=2000"`
}

// AnswerDoubtRequest captures POST /doubts/:id/answers payload.
type AnswerDoubtRequest struct {
	Text string `json:"text" validate:"max=2000"`
}
