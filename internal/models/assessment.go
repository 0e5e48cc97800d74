package models

import "time"

// Exam is a scheduled assessment attached to a lesson.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Assignment is homework attached to a lesson with a due date.
type Assignment struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	StartDate Date      `db:"start_date" json:"start_date"`
	DueDate   Date      `db:"due_date" json:"due_date"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter captures supported filters for listing assignments.
type AssignmentFilter struct {
	LessonID  string
	Search    string
	DueAfter  *Date
	DueBefore *Date
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Result is a score a student achieved on an exam or assignment. Exactly one
// of ExamID and AssignmentID is set.
type Result struct {
	ID           string    `db:"id" json:"id"`
	Score        int       `db:"score" json:"score"`
	ExamID       *string   `db:"exam_id" json:"exam_id,omitempty"`
	AssignmentID *string   `db:"assignment_id" json:"assignment_id,omitempty"`
	StudentID    string    `db:"student_id" json:"student_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ResultDetail joins a result with the titles needed for report cards.
type ResultDetail struct {
	Result
	Title       string `db:"title" json:"title"`
	StudentName string `db:"student_name" json:"student_name"`
}

// Attendance records presence of a student in one lesson on one date.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	Date      Date      `db:"date" json:"date"`
	Present   bool      `db:"present" json:"present"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceDay aggregates presence counts for one weekday.
type AttendanceDay struct {
	Day     string `db:"day" json:"day"`
	Present int    `db:"present" json:"present"`
	Absent  int    `db:"absent" json:"absent"`
}

// AttendanceFilter captures filters for listing attendance records.
type AttendanceFilter struct {
	StudentID string
	LessonID  string
	From      *Date
	To        *Date
	Page      int
	PageSize  int
}
