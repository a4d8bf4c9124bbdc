package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

var (
	// ErrInvalidInput marks request payloads rejected by service validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when the email is already registered to another user.
	ErrEmailTaken = errors.New("email already in use")
	// ErrCPFTaken is returned when the CPF is already registered to another user.
	ErrCPFTaken = errors.New("cpf already in use")
	// ErrInvalidCPF is returned when the CPF check digits do not validate.
	ErrInvalidCPF = errors.New("invalid cpf")
)

// UserInput carries the fields accepted on user create and update.
type UserInput struct {
	FullName           string
	Email              string
	Password           string
	CPF                string
	Role               domain.Role
	Active             bool
	HourlyRate         float64
	ExpectedDailyHours float64
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, input UserInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, input UserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	if err := validateUserInput(&input, true); err != nil {
		return nil, err
	}

	if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if existing, err := s.users.GetByCPF(ctx, input.CPF); err == nil && existing != nil {
		return nil, ErrCPFTaken
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:           input.FullName,
		Email:              input.Email,
		CPF:                input.CPF,
		Role:               input.Role,
		Active:             input.Active,
		PasswordHash:       string(hash),
		HourlyRate:         input.HourlyRate,
		ExpectedDailyHours: input.ExpectedDailyHours,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id int64, input UserInput) (*domain.User, error) {
	existing, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Password is optional on update; blank keeps the current hash.
	if err := validateUserInput(&input, input.Password != ""); err != nil {
		return nil, err
	}

	if existing.Email != input.Email {
		if other, err := s.users.GetByEmail(ctx, input.Email); err == nil && other != nil {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}
	if existing.CPF != input.CPF {
		if other, err := s.users.GetByCPF(ctx, input.CPF); err == nil && other != nil {
			return nil, ErrCPFTaken
		} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	existing.FullName = input.FullName
	existing.Email = input.Email
	existing.CPF = input.CPF
	existing.Role = input.Role
	existing.Active = input.Active
	existing.HourlyRate = input.HourlyRate
	existing.ExpectedDailyHours = input.ExpectedDailyHours

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}
	return sanitizeUser(existing), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func validateUserInput(input *UserInput, requirePassword bool) error {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	input.CPF = normalizeCPF(input.CPF)

	if input.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if requirePassword && len(input.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if !validCPF(input.CPF) {
		return ErrInvalidCPF
	}
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleUser {
		return fmt.Errorf("%w: role must be admin or user", ErrInvalidInput)
	}
	if input.ExpectedDailyHours <= 0 {
		return fmt.Errorf("%w: expected daily hours must be greater than zero", ErrInvalidInput)
	}
	if input.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate cannot be negative", ErrInvalidInput)
	}
	return nil
}

func normalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validCPF checks the two verification digits of a Brazilian CPF number.
func validCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	digit := func(upto int) int {
		sum := 0
		for i := 0; i < upto; i++ {
			sum += int(cpf[i]-'0') * (upto + 1 - i)
		}
		rest := (sum * 10) % 11
		if rest == 10 {
			rest = 0
		}
		return rest
	}

	return digit(9) == int(cpf[9]-'0') && digit(10) == int(cpf[10]-'0')
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
