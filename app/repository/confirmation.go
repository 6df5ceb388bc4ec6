package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-signup/app/entity"
)

// ConfirmationRepository persists email confirmation codes. Records are
// write-once: the only mutation is marking a code consumed.
type ConfirmationRepository struct {
	db executor
}

func NewConfirmationRepository(db *sql.DB) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

func (r *ConfirmationRepository) WithTx(tx *sql.Tx) *ConfirmationRepository {
	return &ConfirmationRepository{db: tx}
}

func (r *ConfirmationRepository) Create(ctx context.Context, confirmation *entity.EmailConfirmation) error {
	query := `
		INSERT INTO email_confirmations (user_id, code, created_at)
		VALUES (?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		confirmation.UserID,
		confirmation.Code,
		confirmation.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicate
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	confirmation.ID = uint64(id)
	return nil
}

func (r *ConfirmationRepository) FindByCode(ctx context.Context, code string) (*entity.EmailConfirmation, error) {
	query := `
		SELECT id, user_id, code, created_at, consumed_at
		FROM email_confirmations WHERE code = ?
	`
	confirmation := &entity.EmailConfirmation{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&confirmation.ID,
		&confirmation.UserID,
		&confirmation.Code,
		&confirmation.CreatedAt,
		&confirmation.ConsumedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (r *ConfirmationRepository) MarkConsumed(ctx context.Context, id uint64, at time.Time) error {
	query := `UPDATE email_confirmations SET consumed_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

// DeleteExpired removes consumed records and records issued before the
// given cutoff, keeping the table from growing without bound.
func (r *ConfirmationRepository) DeleteExpired(ctx context.Context, issuedBefore time.Time) (int64, error) {
	query := `DELETE FROM email_confirmations WHERE consumed_at IS NOT NULL OR created_at < ?`
	result, err := r.db.ExecContext(ctx, query, issuedBefore)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
