package models

import "time"

// Doubt is a question a student raises in the tutor channel.
type Doubt struct {
	ID       string    `json:"id"`
	Student  string    `json:"student"`
	Question string    `json:"question"`
	Time     time.Time `json:"time"`
	Answers  []Comment `json:"answers"`
}
