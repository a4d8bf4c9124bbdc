package repository

import (
	"context"
	"errors"
	"time"

	"oclock-api/internal/domain"
)

// ErrPunchNotFound is returned when a referenced punch does not exist.
var ErrPunchNotFound = errors.New("punch not found")

// PunchRepository exposes persistence operations for clock punches. Every
// listing method returns punches ordered ascending by timestamp.
type PunchRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, punch *domain.Punch) (int64, error)
	Update(ctx context.Context, punch *domain.Punch) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Punch, error)
	List(ctx context.Context) ([]domain.Punch, error)
	ListByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Punch, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]domain.Punch, error)
	// EarliestForUser and LatestForUser return (nil, nil) when the user has
	// no punches at all.
	EarliestForUser(ctx context.Context, userID int64) (*domain.Punch, error)
	LatestForUser(ctx context.Context, userID int64) (*domain.Punch, error)
}
