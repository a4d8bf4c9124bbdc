package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

func TestComputeDailyWorked(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2025, time.June, 2, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		punches []domain.Punch
		want    time.Duration
	}{
		{
			name:    "no punches",
			punches: nil,
			want:    0,
		},
		{
			name: "single pair",
			punches: []domain.Punch{
				{Timestamp: day(9, 0), Kind: domain.PunchClockIn},
				{Timestamp: day(17, 0), Kind: domain.PunchClockOut},
			},
			want: 8 * time.Hour,
		},
		{
			name: "two pairs with lunch break",
			punches: []domain.Punch{
				{Timestamp: day(9, 0), Kind: domain.PunchClockIn},
				{Timestamp: day(12, 0), Kind: domain.PunchClockOut},
				{Timestamp: day(13, 0), Kind: domain.PunchClockIn},
				{Timestamp: day(18, 0), Kind: domain.PunchClockOut},
			},
			want: 8 * time.Hour,
		},
		{
			name: "odd trailing punch contributes nothing",
			punches: []domain.Punch{
				{Timestamp: day(9, 0), Kind: domain.PunchClockIn},
			},
			want: 0,
		},
		{
			name: "trailing open interval after closed pair",
			punches: []domain.Punch{
				{Timestamp: day(9, 0), Kind: domain.PunchClockIn},
				{Timestamp: day(12, 0), Kind: domain.PunchClockOut},
				{Timestamp: day(13, 0), Kind: domain.PunchClockIn},
			},
			want: 3 * time.Hour,
		},
		{
			name: "unsorted input is re-sorted before pairing",
			punches: []domain.Punch{
				{Timestamp: day(17, 0), Kind: domain.PunchClockOut},
				{Timestamp: day(9, 0), Kind: domain.PunchClockIn},
			},
			want: 8 * time.Hour,
		},
		{
			name: "stored kind is ignored, pairing is positional",
			punches: []domain.Punch{
				{Timestamp: day(9, 0), Kind: domain.PunchClockOut},
				{Timestamp: day(10, 30), Kind: domain.PunchClockOut},
			},
			want: 90 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDailyWorked(tt.punches)
			if got != tt.want {
				t.Errorf("ComputeDailyWorked() = %v, want %v", got, tt.want)
			}
		})
	}
}

// June 2025 has 21 weekdays; June 2nd is a Monday.
func TestReportService_Monthly(t *testing.T) {
	ctx := context.Background()

	t.Run("single worked day in a 21 weekday month", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 8.0)
		seedPunches(t, punches,
			punchAt(user.ID, 2025, time.June, 2, 9, 0, domain.PunchClockIn),
			punchAt(user.ID, 2025, time.June, 2, 17, 0, domain.PunchClockOut),
		)

		svc := NewReportService(punches, users)
		report, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}

		if len(report.Days) != 30 {
			t.Errorf("len(Days) = %d, want 30", len(report.Days))
		}
		if got := report.Days[1].Worked; got != 8*time.Hour {
			t.Errorf("June 2nd worked = %v, want 8h", got)
		}
		if report.TotalWorked != 8*time.Hour {
			t.Errorf("TotalWorked = %v, want 8h", report.TotalWorked)
		}
		if want := 168 * time.Hour; report.TotalExpected != want {
			t.Errorf("TotalExpected = %v, want %v", report.TotalExpected, want)
		}
		if want := -160 * time.Hour; report.Balance != want {
			t.Errorf("Balance = %v, want %v", report.Balance, want)
		}
		if report.Status != domain.BalanceNegative {
			t.Errorf("Status = %s, want %s", report.Status, domain.BalanceNegative)
		}
	})

	t.Run("fractional expected hours truncate to whole hours", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 7.5)
		seedPunches(t, punches,
			punchAt(user.ID, 2025, time.June, 2, 9, 0, domain.PunchClockIn),
			punchAt(user.ID, 2025, time.June, 2, 17, 30, domain.PunchClockOut),
		)

		svc := NewReportService(punches, users)
		report, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}

		// 21 weekdays x floor(7.5) = 147h, not 157h30m
		if want := 147 * time.Hour; report.TotalExpected != want {
			t.Errorf("TotalExpected = %v, want %v", report.TotalExpected, want)
		}
		if want := 8*time.Hour + 30*time.Minute; report.TotalWorked != want {
			t.Errorf("TotalWorked = %v, want %v", report.TotalWorked, want)
		}
	})

	t.Run("empty month is fully negative", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 8.0)

		svc := NewReportService(punches, users)
		report, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}

		if report.TotalWorked != 0 {
			t.Errorf("TotalWorked = %v, want 0", report.TotalWorked)
		}
		if want := -168 * time.Hour; report.Balance != want {
			t.Errorf("Balance = %v, want %v", report.Balance, want)
		}
		if report.Status != domain.BalanceNegative {
			t.Errorf("Status = %s, want %s", report.Status, domain.BalanceNegative)
		}
	})

	t.Run("unset daily hours default to 8", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 0)

		svc := NewReportService(punches, users)
		report, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}
		if want := 168 * time.Hour; report.TotalExpected != want {
			t.Errorf("TotalExpected = %v, want %v", report.TotalExpected, want)
		}
		if report.ExpectedDailyHours != 8.0 {
			t.Errorf("ExpectedDailyHours = %v, want 8", report.ExpectedDailyHours)
		}
	})

	t.Run("sub-hour daily hours zero out the expectation", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 0.5)

		svc := NewReportService(punches, users)
		report, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}
		if report.TotalExpected != 0 {
			t.Errorf("TotalExpected = %v, want 0", report.TotalExpected)
		}
		if report.Status != domain.BalanceZeroed {
			t.Errorf("Status = %s, want %s", report.Status, domain.BalanceZeroed)
		}
	})

	t.Run("identical data yields identical reports", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 8.0)
		seedPunches(t, punches,
			punchAt(user.ID, 2025, time.June, 2, 9, 0, domain.PunchClockIn),
			punchAt(user.ID, 2025, time.June, 2, 17, 0, domain.PunchClockOut),
			punchAt(user.ID, 2025, time.June, 3, 10, 0, domain.PunchClockIn),
		)

		svc := NewReportService(punches, users)
		first, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}
		second, err := svc.Monthly(ctx, user.ID, 2025, time.June)
		if err != nil {
			t.Fatalf("Monthly() error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Error("repeated Monthly() calls returned different reports")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewReportService(newMemPunchRepo(), newMemUserRepo())
		if _, err := svc.Monthly(ctx, 42, 2025, time.June); !errors.Is(err, repository.ErrUserNotFound) {
			t.Errorf("Monthly() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestReportService_Accumulated(t *testing.T) {
	ctx := context.Background()

	t.Run("walks every month from first punch to now", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 8.0)
		seedPunches(t, punches,
			punchAt(user.ID, 2025, time.January, 15, 9, 0, domain.PunchClockIn),
			punchAt(user.ID, 2025, time.January, 15, 17, 0, domain.PunchClockOut),
			punchAt(user.ID, 2025, time.February, 3, 9, 0, domain.PunchClockIn),
			punchAt(user.ID, 2025, time.February, 3, 12, 0, domain.PunchClockOut),
		)

		svc := &reportService{
			punches: punches,
			users:   users,
			now: func() time.Time {
				return time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
			},
		}

		report, err := svc.Accumulated(ctx, user.ID)
		if err != nil {
			t.Fatalf("Accumulated() error = %v", err)
		}

		if len(report.Months) != 3 {
			t.Fatalf("len(Months) = %d, want 3", len(report.Months))
		}
		wantOrder := []time.Month{time.January, time.February, time.March}
		var sum time.Duration
		for i, monthly := range report.Months {
			if monthly.Month != wantOrder[i] {
				t.Errorf("Months[%d] = %s, want %s", i, monthly.Month, wantOrder[i])
			}
			sum += monthly.Balance
		}
		if report.TotalBalance != sum {
			t.Errorf("TotalBalance = %v, want sum of monthly balances %v", report.TotalBalance, sum)
		}
	})

	t.Run("no punches yields an empty zero report", func(t *testing.T) {
		users := newMemUserRepo()
		punches := newMemPunchRepo()
		user := seedUser(t, users, 8.0)

		svc := NewReportService(punches, users)
		report, err := svc.Accumulated(ctx, user.ID)
		if err != nil {
			t.Fatalf("Accumulated() error = %v", err)
		}
		if report.TotalBalance != 0 {
			t.Errorf("TotalBalance = %v, want 0", report.TotalBalance)
		}
		if len(report.Months) != 0 {
			t.Errorf("len(Months) = %d, want 0", len(report.Months))
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewReportService(newMemPunchRepo(), newMemUserRepo())
		if _, err := svc.Accumulated(ctx, 42); !errors.Is(err, repository.ErrUserNotFound) {
			t.Errorf("Accumulated() error = %v, want ErrUserNotFound", err)
		}
	})
}

func seedPunches(t *testing.T, repo *memPunchRepo, punches ...domain.Punch) {
	t.Helper()
	for i := range punches {
		if _, err := repo.Create(context.Background(), &punches[i]); err != nil {
			t.Fatalf("seed punch: %v", err)
		}
	}
}
