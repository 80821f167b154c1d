package dto

// SweepResult summarises a reminder sweep.
type SweepResult struct {
	Lectures      int `json:"lectures"`
	Enrollments   int `json:"enrollments"`
	Notifications int `json:"notifications"`
}
