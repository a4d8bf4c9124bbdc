package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oclock-api/internal/domain"
	"oclock-api/internal/repository"
)

const createPunchesTable = `
CREATE TABLE IF NOT EXISTS punches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	timestamp DATETIME NOT NULL,
	kind TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_punches_user_timestamp ON punches (user_id, timestamp);
`

type PunchRepository struct {
	db *sql.DB
}

func NewPunchRepository(db *sql.DB) repository.PunchRepository {
	return &PunchRepository{db: db}
}

func (r *PunchRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPunchesTable); err != nil {
		return fmt.Errorf("create punches table: %w", err)
	}
	return nil
}

func (r *PunchRepository) Create(ctx context.Context, punch *domain.Punch) (int64, error) {
	now := time.Now().UTC()
	punch.CreatedAt = now
	punch.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO punches (user_id, timestamp, kind, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		punch.UserID,
		punch.Timestamp,
		string(punch.Kind),
		punch.Note,
		punch.CreatedAt,
		punch.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert punch: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("punch last insert id: %w", err)
	}
	punch.ID = id
	return id, nil
}

func (r *PunchRepository) Update(ctx context.Context, punch *domain.Punch) error {
	punch.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE punches
SET user_id = ?, timestamp = ?, kind = ?, note = ?, updated_at = ?
WHERE id = ?`,
		punch.UserID,
		punch.Timestamp,
		string(punch.Kind),
		punch.Note,
		punch.UpdatedAt,
		punch.ID,
	)
	if err != nil {
		return fmt.Errorf("update punch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update punch rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrPunchNotFound
	}
	return nil
}

func (r *PunchRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM punches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete punch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete punch rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrPunchNotFound
	}
	return nil
}

const selectPunchColumns = `
SELECT id, user_id, timestamp, kind, note, created_at, updated_at
FROM punches`

func (r *PunchRepository) Get(ctx context.Context, id int64) (*domain.Punch, error) {
	row := r.db.QueryRowContext(ctx, selectPunchColumns+` WHERE id = ?`, id)
	punch, err := scanPunch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrPunchNotFound
		}
		return nil, err
	}
	return punch, nil
}

func (r *PunchRepository) List(ctx context.Context) ([]domain.Punch, error) {
	rows, err := r.db.QueryContext(ctx, selectPunchColumns+` ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list punches: %w", err)
	}
	return collectPunches(rows)
}

func (r *PunchRepository) ListByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.Punch, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPunchColumns+` WHERE user_id = ? AND timestamp >= ? AND timestamp <= ? ORDER BY timestamp ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list punches by user and range: %w", err)
	}
	return collectPunches(rows)
}

func (r *PunchRepository) ListByRange(ctx context.Context, start, end time.Time) ([]domain.Punch, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPunchColumns+` WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list punches by range: %w", err)
	}
	return collectPunches(rows)
}

func (r *PunchRepository) EarliestForUser(ctx context.Context, userID int64) (*domain.Punch, error) {
	row := r.db.QueryRowContext(ctx,
		selectPunchColumns+` WHERE user_id = ? ORDER BY timestamp ASC LIMIT 1`, userID)
	punch, err := scanPunch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return punch, err
}

func (r *PunchRepository) LatestForUser(ctx context.Context, userID int64) (*domain.Punch, error) {
	row := r.db.QueryRowContext(ctx,
		selectPunchColumns+` WHERE user_id = ? ORDER BY timestamp DESC LIMIT 1`, userID)
	punch, err := scanPunch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return punch, err
}

func collectPunches(rows *sql.Rows) ([]domain.Punch, error) {
	defer rows.Close()

	var punches []domain.Punch
	for rows.Next() {
		punch, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		punches = append(punches, *punch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate punches: %w", err)
	}
	return punches, nil
}

func scanPunch(row interface {
	Scan(dest ...any) error
}) (*domain.Punch, error) {
	var (
		punch domain.Punch
		kind  string
	)
	if err := row.Scan(
		&punch.ID,
		&punch.UserID,
		&punch.Timestamp,
		&kind,
		&punch.Note,
		&punch.CreatedAt,
		&punch.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan punch: %w", err)
	}
	punch.Kind = domain.PunchKind(kind)
	return &punch, nil
}
