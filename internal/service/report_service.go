package service

import (
	"context"
	"sort"
	"time"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

// defaultDailyHours is the workday target applied when a user has no
// configured expected daily hours.
const defaultDailyHours = 8.0

// ReportService derives banked-hours reports from stored punches. All
// operations are pure reads over a snapshot fetched at call time.
type ReportService interface {
	Monthly(ctx context.Context, userID int64, year int, month time.Month) (*domain.MonthlyReport, error)
	Accumulated(ctx context.Context, userID int64) (*domain.AccumulatedReport, error)
}

type reportService struct {
	punches repository.PunchRepository
	users   repository.UserRepository

	// now is swapped out by tests to pin the accumulated report horizon.
	now func() time.Time
}

func NewReportService(punches repository.PunchRepository, users repository.UserRepository) ReportService {
	return &reportService{
		punches: punches,
		users:   users,
		now:     time.Now,
	}
}

// ComputeDailyWorked sums the worked duration of one user's punches for one
// day. Punches are paired positionally after an ascending re-sort: the walk
// alternates between awaiting a start and awaiting an end, and an interval is
// closed each time an end arrives. The stored punch kind is deliberately not
// consulted, and an odd trailing punch leaves an open interval that
// contributes nothing.
func ComputeDailyWorked(punches []domain.Punch) time.Duration {
	sorted := make([]domain.Punch, len(punches))
	copy(sorted, punches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var (
		total time.Duration
		start time.Time
		open  bool
	)
	for _, punch := range sorted {
		if !open {
			start = punch.Timestamp
			open = true
			continue
		}
		total += punch.Timestamp.Sub(start)
		open = false
	}
	return total
}

func (s *reportService) Monthly(ctx context.Context, userID int64, year int, month time.Month) (*domain.MonthlyReport, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	expectedDailyHours := user.ExpectedDailyHours
	if expectedDailyHours <= 0 {
		expectedDailyHours = defaultDailyHours
	}

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)
	rangeEnd := time.Date(year, month, lastDay.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)

	punches, err := s.punches.ListByUserAndRange(ctx, userID, firstDay, rangeEnd)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]domain.Punch)
	for _, punch := range punches {
		key := punch.Timestamp.Format(time.DateOnly)
		byDay[key] = append(byDay[key], punch)
	}

	// Fractional daily hours are truncated to whole hours in the expected
	// total: a configured 7.5-hour day counts 7 hours per weekday. Kept for
	// compatibility with existing reports.
	expectedPerWeekday := time.Duration(int64(expectedDailyHours)) * time.Hour

	report := &domain.MonthlyReport{
		UserID:             user.ID,
		UserName:           user.FullName,
		Year:               year,
		Month:              month,
		ExpectedDailyHours: expectedDailyHours,
		Days:               make([]domain.DayWorked, 0, lastDay.Day()),
	}

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			report.TotalExpected += expectedPerWeekday
		}

		worked := ComputeDailyWorked(byDay[day.Format(time.DateOnly)])
		report.Days = append(report.Days, domain.DayWorked{Date: day, Worked: worked})
		report.TotalWorked += worked
	}

	report.Balance = report.TotalWorked - report.TotalExpected
	report.Status = domain.ClassifyBalance(report.Balance)
	return report, nil
}

func (s *reportService) Accumulated(ctx context.Context, userID int64) (*domain.AccumulatedReport, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &domain.AccumulatedReport{
		UserID:   user.ID,
		UserName: user.FullName,
		Months:   []domain.MonthlyReport{},
	}

	earliest, err := s.punches.EarliestForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if earliest == nil {
		return report, nil
	}

	today := s.now()
	horizon := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	first := earliest.Timestamp
	for cursor := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC); !cursor.After(horizon); cursor = cursor.AddDate(0, 1, 0) {
		monthly, err := s.Monthly(ctx, userID, cursor.Year(), cursor.Month())
		if err != nil {
			return nil, err
		}
		report.TotalBalance += monthly.Balance
		report.Months = append(report.Months, *monthly)
	}

	return report, nil
}
