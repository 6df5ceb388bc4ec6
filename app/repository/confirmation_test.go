package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-signup/app/entity"
	"github.com/vibast-solutions/ms-go-signup/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

const (
	insertConfirmationQuery = `(?s)INSERT INTO email_confirmations \(user_id, code, created_at\)\s+VALUES \(\?, \?, \?\)`
	findByCodeQuery         = `(?s)SELECT id, user_id, code, created_at, consumed_at\s+FROM email_confirmations WHERE code = \?`
	markConsumedQuery       = `(?s)UPDATE email_confirmations SET consumed_at = \? WHERE id = \?`
	deleteExpiredQuery      = `(?s)DELETE FROM email_confirmations WHERE consumed_at IS NOT NULL OR created_at < \?`
)

var confirmationColumns = []string{
	"id",
	"user_id",
	"code",
	"created_at",
	"consumed_at",
}

func TestConfirmationRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)
	now := time.Now()
	confirmation := &entity.EmailConfirmation{
		UserID:    9,
		Code:      "a1b2c3d4e5f6",
		CreatedAt: now,
	}

	mock.ExpectExec(insertConfirmationQuery).
		WithArgs(confirmation.UserID, confirmation.Code, confirmation.CreatedAt).
		WillReturnResult(sqlmock.NewResult(3, 1))

	if err := repo.Create(context.Background(), confirmation); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if confirmation.ID != 3 {
		t.Fatalf("expected ID 3, got %d", confirmation.ID)
	}
}

func TestConfirmationRepository_CreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)

	mock.ExpectExec(insertConfirmationQuery).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a1b2c3d4e5f6' for key 'uq_email_confirmations_code'"})

	err := repo.Create(context.Background(), &entity.EmailConfirmation{
		UserID:    9,
		Code:      "a1b2c3d4e5f6",
		CreatedAt: time.Now(),
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestConfirmationRepository_FindByCode(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)
	issued := time.Now().Add(-10 * time.Minute)

	mock.ExpectQuery(findByCodeQuery).
		WithArgs("a1b2c3d4e5f6").
		WillReturnRows(sqlmock.NewRows(confirmationColumns).
			AddRow(3, 9, "a1b2c3d4e5f6", issued, nil))

	confirmation, err := repo.FindByCode(context.Background(), "a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if confirmation == nil || confirmation.ID != 3 || confirmation.UserID != 9 {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}
	if confirmation.Consumed() {
		t.Fatalf("expected unconsumed record")
	}
}

func TestConfirmationRepository_FindByCodeMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)

	mock.ExpectQuery(findByCodeQuery).
		WithArgs("ffffffffffff").
		WillReturnRows(sqlmock.NewRows(confirmationColumns))

	confirmation, err := repo.FindByCode(context.Background(), "ffffffffffff")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if confirmation != nil {
		t.Fatalf("expected nil, got %+v", confirmation)
	}
}

func TestConfirmationRepository_MarkConsumed(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)
	at := time.Now()

	mock.ExpectExec(markConsumedQuery).
		WithArgs(at, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkConsumed(context.Background(), 3, at); err != nil {
		t.Fatalf("mark consumed failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmationRepository_DeleteExpired(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewConfirmationRepository(db)
	cutoff := time.Now().Add(-time.Hour)

	mock.ExpectExec(deleteExpiredQuery).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 4 {
		t.Fatalf("expected 4 rows removed, got %d", removed)
	}
}
