package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

// autoPunchNote is recorded on punches created by the clock endpoint.
const autoPunchNote = "recorded automatically by the API"

// PunchInput carries the fields accepted on admin punch create and update.
type PunchInput struct {
	UserID    int64
	Timestamp time.Time
	Kind      domain.PunchKind
	Note      string
}

// PunchService coordinates punch level operations backed by repositories.
type PunchService interface {
	// Clock records the next punch for a user, alternating clock_in and
	// clock_out from the latest stored punch. Concurrent calls for the same
	// user are serialized so two punches of the same kind cannot be written.
	Clock(ctx context.Context, userID int64, at time.Time) (*domain.Punch, error)
	Get(ctx context.Context, id int64) (*domain.Punch, error)
	List(ctx context.Context) ([]domain.Punch, error)
	ListByUserAndDay(ctx context.Context, userID int64, day time.Time) ([]domain.Punch, error)
	ListByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Punch, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]domain.Punch, error)
	Create(ctx context.Context, input PunchInput) (*domain.Punch, error)
	Update(ctx context.Context, id int64, input PunchInput) (*domain.Punch, error)
	Delete(ctx context.Context, id int64) error
}

type punchService struct {
	punches repository.PunchRepository
	users   repository.UserRepository

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewPunchService(punches repository.PunchRepository, users repository.UserRepository) PunchService {
	return &punchService{
		punches:   punches,
		users:     users,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *punchService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

func (s *punchService) Clock(ctx context.Context, userID int64, at time.Time) (*domain.Punch, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	// read-latest-then-insert is the critical section; without the lock two
	// concurrent calls could both observe the same latest punch and write
	// two consecutive punches of the same kind.
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := s.punches.LatestForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	kind := domain.PunchClockIn
	if latest != nil {
		kind = latest.Kind.Next()
	}

	punch := &domain.Punch{
		UserID:    userID,
		Timestamp: at.UTC(),
		Kind:      kind,
		Note:      autoPunchNote,
	}
	if _, err := s.punches.Create(ctx, punch); err != nil {
		return nil, err
	}
	return punch, nil
}

func (s *punchService) Get(ctx context.Context, id int64) (*domain.Punch, error) {
	return s.punches.Get(ctx, id)
}

func (s *punchService) List(ctx context.Context) ([]domain.Punch, error) {
	return s.punches.List(ctx)
}

func (s *punchService) ListByUserAndDay(ctx context.Context, userID int64, day time.Time) ([]domain.Punch, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	start, end := dayBounds(day)
	return s.punches.ListByUserAndRange(ctx, userID, start, end)
}

func (s *punchService) ListByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Punch, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.punches.ListByUserAndRange(ctx, userID, start.UTC(), end.UTC())
}

func (s *punchService) ListByRange(ctx context.Context, start, end time.Time) ([]domain.Punch, error) {
	return s.punches.ListByRange(ctx, start.UTC(), end.UTC())
}

func (s *punchService) Create(ctx context.Context, input PunchInput) (*domain.Punch, error) {
	if err := validatePunchInput(input); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	punch := &domain.Punch{
		UserID:    input.UserID,
		Timestamp: input.Timestamp.UTC(),
		Kind:      input.Kind,
		Note:      input.Note,
	}
	if _, err := s.punches.Create(ctx, punch); err != nil {
		return nil, err
	}
	return punch, nil
}

func (s *punchService) Update(ctx context.Context, id int64, input PunchInput) (*domain.Punch, error) {
	if err := validatePunchInput(input); err != nil {
		return nil, err
	}

	existing, err := s.punches.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != input.UserID {
		if err := s.requireUser(ctx, input.UserID); err != nil {
			return nil, err
		}
		existing.UserID = input.UserID
	}

	existing.Timestamp = input.Timestamp.UTC()
	existing.Kind = input.Kind
	existing.Note = input.Note

	if err := s.punches.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *punchService) Delete(ctx context.Context, id int64) error {
	if _, err := s.punches.Get(ctx, id); err != nil {
		return err
	}
	return s.punches.Delete(ctx, id)
}

func (s *punchService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrUserNotFound
	}
	return nil
}

func validatePunchInput(input PunchInput) error {
	if input.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidInput)
	}
	if input.Kind != domain.PunchClockIn && input.Kind != domain.PunchClockOut {
		return fmt.Errorf("%w: kind must be clock_in or clock_out", ErrInvalidInput)
	}
	return nil
}

// dayBounds returns the inclusive range covering one calendar day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return start, end
}
