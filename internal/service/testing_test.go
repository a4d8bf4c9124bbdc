package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

// In-memory repositories used by the service tests.

type memUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Init(ctx context.Context) error { return nil }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) GetByCPF(ctx context.Context, cpf string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.CPF == cpf {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type memPunchRepo struct {
	mu      sync.Mutex
	punches []domain.Punch
	nextID  int64
}

func newMemPunchRepo() *memPunchRepo {
	return &memPunchRepo{}
}

func (r *memPunchRepo) Init(ctx context.Context) error { return nil }

func (r *memPunchRepo) Create(ctx context.Context, punch *domain.Punch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	punch.ID = r.nextID
	now := time.Now().UTC()
	punch.CreatedAt = now
	punch.UpdatedAt = now
	r.punches = append(r.punches, *punch)
	return punch.ID, nil
}

func (r *memPunchRepo) Update(ctx context.Context, punch *domain.Punch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.punches {
		if r.punches[i].ID == punch.ID {
			punch.UpdatedAt = time.Now().UTC()
			r.punches[i] = *punch
			return nil
		}
	}
	return repository.ErrPunchNotFound
}

func (r *memPunchRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.punches {
		if r.punches[i].ID == id {
			r.punches = append(r.punches[:i], r.punches[i+1:]...)
			return nil
		}
	}
	return repository.ErrPunchNotFound
}

func (r *memPunchRepo) Get(ctx context.Context, id int64) (*domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.punches {
		if r.punches[i].ID == id {
			clone := r.punches[i]
			return &clone, nil
		}
	}
	return nil, repository.ErrPunchNotFound
}

func (r *memPunchRepo) List(ctx context.Context) ([]domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedByTimestamp(r.punches), nil
}

func (r *memPunchRepo) ListByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Punch
	for _, punch := range r.punches {
		if punch.UserID != userID {
			continue
		}
		if punch.Timestamp.Before(start) || punch.Timestamp.After(end) {
			continue
		}
		out = append(out, punch)
	}
	return sortedByTimestamp(out), nil
}

func (r *memPunchRepo) ListByRange(ctx context.Context, start, end time.Time) ([]domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Punch
	for _, punch := range r.punches {
		if punch.Timestamp.Before(start) || punch.Timestamp.After(end) {
			continue
		}
		out = append(out, punch)
	}
	return sortedByTimestamp(out), nil
}

func (r *memPunchRepo) EarliestForUser(ctx context.Context, userID int64) (*domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.Punch
	for i := range r.punches {
		punch := r.punches[i]
		if punch.UserID != userID {
			continue
		}
		if found == nil || punch.Timestamp.Before(found.Timestamp) {
			clone := punch
			found = &clone
		}
	}
	return found, nil
}

func (r *memPunchRepo) LatestForUser(ctx context.Context, userID int64) (*domain.Punch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.Punch
	for i := range r.punches {
		punch := r.punches[i]
		if punch.UserID != userID {
			continue
		}
		if found == nil || punch.Timestamp.After(found.Timestamp) {
			clone := punch
			found = &clone
		}
	}
	return found, nil
}

func sortedByTimestamp(punches []domain.Punch) []domain.Punch {
	out := make([]domain.Punch, len(punches))
	copy(out, punches)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

var (
	_ repository.UserRepository  = (*memUserRepo)(nil)
	_ repository.PunchRepository = (*memPunchRepo)(nil)
)

func seedUser(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, repo *memUserRepo, dailyHours float64) *domain.User {
	t.Helper()
	user := &domain.User{
		FullName:           "Maria Souza",
		Email:              "maria@example.com",
		CPF:                "52998224725",
		Role:               domain.RoleUser,
		Active:             true,
		PasswordHash:       "x",
		ExpectedDailyHours: dailyHours,
	}
	if _, err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func punchAt(userID int64, year int, month time.Month, day, hour, minute int, kind domain.PunchKind) domain.Punch {
	return domain.Punch{
		UserID:    userID,
		Timestamp: time.Date(year, month, day, hour, minute, 0, 0, time.UTC),
		Kind:      kind,
	}
}
