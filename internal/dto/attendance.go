package dto

import "github.com/noah-isme/lms-api/internal/models"

// MarkAttendanceRequest carries the marks for one lecture.
type MarkAttendanceRequest struct {
	Marks []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

// AttendanceMark is a single student's mark.
type AttendanceMark struct {
	UserID string                  `json:"userId" validate:"required"`
	Status models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
}

// AttendanceRoster is the admin view of a lecture.
type AttendanceRoster struct {
	Lecture  models.Lecture                 `json:"lecture"`
	Students []models.AttendanceRosterEntry `json:"students"`
}
