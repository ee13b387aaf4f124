package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

const shiftColumns = `id, user_id, terminal_id, status, opening_cash, closing_cash, start_time, end_time`

// ShiftRepo ShiftRepository adapter over PostgreSQL (pool or tx).
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository builds the adapter. Pass a pool or a tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

// Create inserts a shift. The partial unique index on (user_id) WHERE
// status = 'open' backstops the one-open-shift-per-user rule; a hit
// surfaces as ErrDuplicate.
func (r *ShiftRepo) Create(s *entity.Shift) error {
	query := `
		INSERT INTO shifts (id, user_id, terminal_id, status, opening_cash, closing_cash, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.UserID, s.TerminalID, s.Status, s.OpeningCash, s.ClosingCash, s.StartTime, s.EndTime)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

func (r *ShiftRepo) scanOne(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	err := row.Scan(&s.ID, &s.UserID, &s.TerminalID, &s.Status, &s.OpeningCash, &s.ClosingCash, &s.StartTime, &s.EndTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan shift: %w", err)
	}
	return &s, nil
}

// GetByID fetches a shift, nil when absent.
func (r *ShiftRepo) GetByID(id string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetOpenByUser fetches the user's open shift, nil when none.
func (r *ShiftRepo) GetOpenByUser(userID string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE user_id = $1 AND status = 'open'`
	return r.scanOne(r.q.QueryRow(context.Background(), query, userID))
}

// Update persists status, closing cash and end time.
func (r *ShiftRepo) Update(s *entity.Shift) error {
	query := `UPDATE shifts SET status = $2, closing_cash = $3, end_time = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, s.ID, s.Status, s.ClosingCash, s.EndTime)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// List returns shifts, newest first.
func (r *ShiftRepo) List(limit, offset int) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()
	var out []*entity.Shift
	for rows.Next() {
		var s entity.Shift
		if err := rows.Scan(&s.ID, &s.UserID, &s.TerminalID, &s.Status, &s.OpeningCash, &s.ClosingCash, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
