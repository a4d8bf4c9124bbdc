package domain

import "time"

type BalanceStatus string

const (
	BalancePositive BalanceStatus = "POSITIVE"
	BalanceNegative BalanceStatus = "NEGATIVE"
	BalanceZeroed   BalanceStatus = "ZEROED"
)

// ClassifyBalance maps a signed balance to its tri-state status.
func ClassifyBalance(balance time.Duration) BalanceStatus {
	switch {
	case balance == 0:
		return BalanceZeroed
	case balance < 0:
		return BalanceNegative
	default:
		return BalancePositive
	}
}

// DayWorked is the worked total for one calendar day of a monthly report.
type DayWorked struct {
	Date   time.Time
	Worked time.Duration
}

// MonthlyReport is the banked-hours summary for one user and one month.
// Reports are computed on demand and never persisted.
type MonthlyReport struct {
	UserID             int64
	UserName           string
	Year               int
	Month              time.Month
	ExpectedDailyHours float64
	// Days holds one entry per calendar day of the month, in chronological
	// order. A slice rather than a map so the order survives serialization.
	Days          []DayWorked
	TotalWorked   time.Duration
	TotalExpected time.Duration
	Balance       time.Duration
	Status        BalanceStatus
}

// AccumulatedReport aggregates every monthly report from the user's first
// punch through the current month.
type AccumulatedReport struct {
	UserID       int64
	UserName     string
	TotalBalance time.Duration
	Months       []MonthlyReport
}
