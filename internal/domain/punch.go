package domain

import "time"

type PunchKind string

const (
	PunchClockIn  PunchKind = "clock_in"
	PunchClockOut PunchKind = "clock_out"
)

// Next returns the kind that should follow this one in a punch sequence.
func (k PunchKind) Next() PunchKind {
	if k == PunchClockIn {
		return PunchClockOut
	}
	return PunchClockIn
}

// Punch is a single timestamped clock event for a user. Punches for a user,
// ordered by timestamp, are assumed to alternate clock_in, clock_out, ...;
// the store does not repair sequences broken by manual edits.
type Punch struct {
	ID     int64
	UserID int64
	// Timestamp is a naive wall-clock instant; the system does not attach
	// timezone meaning to it.
	Timestamp time.Time
	Kind      PunchKind
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
