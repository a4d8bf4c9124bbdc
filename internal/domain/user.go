package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents an employee tracked by the time clock.
type User struct {
	ID           int64
	FullName     string
	Email        string
	CPF          string
	Role         Role
	Active       bool
	PasswordHash string
	// HourlyRate is the pay rate in currency units per hour, zero when unset.
	HourlyRate float64
	// ExpectedDailyHours is the contracted workday length used as the daily
	// target during report generation. Zero means not configured.
	ExpectedDailyHours float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
