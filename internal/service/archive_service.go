package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"oclock-api/internal/domain"
	"oclock-api/internal/storage"
)

// ArchiveService exports banked-hours reports as CSV documents to object
// storage so they can be handed to payroll unchanged later on.
type ArchiveService interface {
	ArchiveMonthly(ctx context.Context, userID int64, year int, month time.Month) (string, error)
	// ArchiveAccumulated writes one CSV per month of the accumulated report.
	// Returned locations are ordered chronologically.
	ArchiveAccumulated(ctx context.Context, userID int64) ([]string, error)
	ListArchives(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
}

type archiveService struct {
	reports   ReportService
	store     storage.Service
	bucket    string
	keyPrefix string
}

func NewArchiveService(reports ReportService, store storage.Service, bucket, keyPrefix string) ArchiveService {
	return &archiveService{
		reports:   reports,
		store:     store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (s *archiveService) ArchiveMonthly(ctx context.Context, userID int64, year int, month time.Month) (string, error) {
	report, err := s.reports.Monthly(ctx, userID, year, month)
	if err != nil {
		return "", err
	}
	return s.putMonthly(ctx, report)
}

func (s *archiveService) ArchiveAccumulated(ctx context.Context, userID int64) ([]string, error) {
	accumulated, err := s.reports.Accumulated(ctx, userID)
	if err != nil {
		return nil, err
	}

	locations := make([]string, len(accumulated.Months))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	for i := range accumulated.Months {
		group.Go(func() error {
			location, err := s.putMonthly(groupCtx, &accumulated.Months[i])
			if err != nil {
				return err
			}
			locations[i] = location
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *archiveService) ListArchives(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if prefix == "" {
		prefix = s.keyPrefix
	}
	return s.store.ListObjects(ctx, s.bucket, prefix)
}

func (s *archiveService) putMonthly(ctx context.Context, report *domain.MonthlyReport) (string, error) {
	body, err := monthlyReportCSV(report)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/user-%d/%04d-%02d.csv", s.keyPrefix, report.UserID, report.Year, int(report.Month))
	return s.store.PutObject(ctx, s.bucket, key, "text/csv", body)
}

// monthlyReportCSV renders a monthly report as CSV: one row per calendar day
// followed by the month totals.
func monthlyReportCSV(report *domain.MonthlyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"user_id", strconv.FormatInt(report.UserID, 10)},
		{"user_name", report.UserName},
		{"period", fmt.Sprintf("%04d-%02d", report.Year, int(report.Month))},
		{"expected_daily_hours", strconv.FormatFloat(report.ExpectedDailyHours, 'f', -1, 64)},
		{},
		{"date", "worked"},
	}
	for _, day := range report.Days {
		records = append(records, []string{day.Date.Format(time.DateOnly), day.Worked.String()})
	}
	records = append(records,
		[]string{},
		[]string{"total_worked", report.TotalWorked.String()},
		[]string{"total_expected", report.TotalExpected.String()},
		[]string{"balance", report.Balance.String()},
		[]string{"status", string(report.Status)},
	)

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write report csv: %w", err)
	}
	return buf.Bytes(), nil
}
