package models

import "time"

// AttendanceStatus represents a student's presence at a lecture.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Attendance is one mark per (lecture, user).
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	LectureID string           `db:"lecture_id" json:"lecture_id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
}

// AttendanceRosterEntry lists an actively enrolled student with their current mark.
type AttendanceRosterEntry struct {
	UserID   string           `db:"user_id" json:"user_id"`
	FullName string           `db:"full_name" json:"full_name"`
	Status   AttendanceStatus `db:"status" json:"status"`
}

// AttendanceHistoryRow is a student's mark for a past lecture.
type AttendanceHistoryRow struct {
	LectureID    string           `db:"lecture_id" json:"lecture_id"`
	LectureTitle string           `db:"lecture_title" json:"lecture_title"`
	ScheduledAt  time.Time        `db:"scheduled_at" json:"scheduled_at"`
	BatchName    string           `db:"batch_name" json:"batch_name"`
	Status       AttendanceStatus `db:"status" json:"status"`
}
