package models

// AttendanceStatus is a student's mark for a topic. Anything other than absent counts as attending.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceDone    AttendanceStatus = "done"
)

// AttendanceRecord tracks one topic.
type AttendanceRecord struct {
	Title    string                      `json:"title"`
	Date     string                      `json:"date"`
	Students map[string]AttendanceStatus `json:"students"`
}

// AttendanceData maps topic ids to records.
type AttendanceData map[string]AttendanceRecord

// Clone returns a deep copy so callers can mutate freely.
func (d AttendanceData) Clone() AttendanceData {
	out := make(AttendanceData, len(d))
	for id, rec := range d {
		students := make(map[string]AttendanceStatus, len(rec.Students))
		for email, status := range rec.Students {
			students[email] = status
		}
		rec.Students = students
		out[id] = rec
	}
	return out
}
