package models

import "time"

// DashboardSummary is the admin landing page payload: account counts per
// role, student sex distribution and the weekly attendance chart.
type DashboardSummary struct {
	UserCounts       []RoleCount     `json:"user_counts"`
	SexCounts        []SexCount      `json:"sex_counts"`
	WeeklyAttendance []AttendanceDay `json:"weekly_attendance"`
	GeneratedAt      time.Time       `json:"generated_at"`
}
