package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-signup/app/entity"
	"github.com/vibast-solutions/ms-go-signup/app/repository"
	"github.com/vibast-solutions/ms-go-signup/config"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists              = errors.New("user already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrAccountNotConfirmed     = errors.New("account not confirmed")
	ErrAccountAlreadyConfirmed = errors.New("account is already confirmed")
)

// confirmCodeTTL is the validity window of a confirmation code. It is a
// fixed policy, not configuration; only enforcement can be toggled.
const confirmCodeTTL = time.Hour

// ConfirmationOutcome is the terminal state of a confirmation attempt.
type ConfirmationOutcome int

const (
	OutcomeInvalid ConfirmationOutcome = iota
	OutcomeExpired
	OutcomeConfirmed
)

func (o ConfirmationOutcome) String() string {
	switch o {
	case OutcomeExpired:
		return "expired"
	case OutcomeConfirmed:
		return "confirmed"
	default:
		return "invalid"
	}
}

// Mailer delivers a confirmation code to an email address.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, toEmail, code string) error
}

type SignupService struct {
	db               *sql.DB
	userRepo         *repository.UserRepository
	confirmationRepo *repository.ConfirmationRepository
	mailer           Mailer
	cfg              *config.Config
}

func NewSignupService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	confirmationRepo *repository.ConfirmationRepository,
	mailer Mailer,
	cfg *config.Config,
) *SignupService {
	return &SignupService{
		db:               db,
		userRepo:         userRepo,
		confirmationRepo: confirmationRepo,
		mailer:           mailer,
		cfg:              cfg,
	}
}

// Register creates an unconfirmed account and issues its first
// confirmation code. Username and email uniqueness is enforced by the
// database; a duplicate insert surfaces as ErrUserExists, so concurrent
// registrations cannot both succeed. A mail delivery failure is returned
// as-is: the account exists at that point, but the request fails.
func (s *SignupService) Register(ctx context.Context, username, password, email string) (*entity.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Username:       username,
		Email:          email,
		CanonicalEmail: CanonicalizeEmail(email),
		PasswordHash:   string(hashedPassword),
		IsConfirmed:    false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if err := s.IssueConfirmation(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// IssueConfirmation generates a fresh code, persists it bound to the user,
// and hands it to the mailer. Each call produces one outbound message;
// outstanding codes for the same user are not invalidated, so a user may
// hold several valid codes at once.
func (s *SignupService) IssueConfirmation(ctx context.Context, user *entity.User) error {
	confirmation := &entity.EmailConfirmation{
		UserID:    user.ID,
		Code:      GenerateConfirmationCode(),
		CreatedAt: time.Now(),
	}

	if err := s.confirmationRepo.Create(ctx, confirmation); err != nil {
		return err
	}

	return s.mailer.SendConfirmationCode(ctx, user.Email, confirmation.Code)
}

// ResendConfirmation issues a new code for an existing unconfirmed account.
func (s *SignupService) ResendConfirmation(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsConfirmed {
		return ErrAccountAlreadyConfirmed
	}

	return s.IssueConfirmation(ctx, user)
}

// Confirm resolves a submitted code. The lookup is by code value alone and
// the comparison is exact: no trimming, no case folding. A code that was
// never issued or has already been redeemed reads as invalid; a code past
// its window reads as expired when enforcement is on. On success the owning
// account's confirmed flag and the record's consumed marker are written in
// one transaction, making the code single-use, and the owning user is
// returned for the caller's logs.
func (s *SignupService) Confirm(ctx context.Context, code string) (ConfirmationOutcome, *entity.User, error) {
	confirmation, err := s.confirmationRepo.FindByCode(ctx, code)
	if err != nil {
		return OutcomeInvalid, nil, err
	}
	if confirmation == nil || confirmation.Consumed() {
		return OutcomeInvalid, nil, nil
	}
	// A case-insensitive column collation can hand back a row the user's
	// input only case-folds to; the contract is byte equality.
	if confirmation.Code != code {
		return OutcomeInvalid, nil, nil
	}

	now := time.Now()
	if s.cfg.ConfirmExpiryEnforced && now.After(confirmation.CreatedAt.Add(confirmCodeTTL)) {
		return OutcomeExpired, nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, confirmation.UserID)
	if err != nil {
		return OutcomeInvalid, nil, err
	}
	if user == nil {
		return OutcomeInvalid, nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeInvalid, nil, err
	}
	defer tx.Rollback()

	if err := s.userRepo.WithTx(tx).SetConfirmed(ctx, user.ID); err != nil {
		return OutcomeInvalid, nil, err
	}
	if err := s.confirmationRepo.WithTx(tx).MarkConsumed(ctx, confirmation.ID, now); err != nil {
		return OutcomeInvalid, nil, err
	}

	if err := tx.Commit(); err != nil {
		return OutcomeInvalid, nil, err
	}

	user.IsConfirmed = true
	return OutcomeConfirmed, user, nil
}

// Authenticate checks username, password and the confirmed flag. An unknown
// username and a wrong password both return ErrInvalidCredentials; callers
// decide how much of the distinction to surface.
func (s *SignupService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsConfirmed {
		return nil, ErrAccountNotConfirmed
	}

	return user, nil
}

// PruneConfirmations deletes consumed records and records too old to ever
// verify again. It returns the number of rows removed.
func (s *SignupService) PruneConfirmations(ctx context.Context) (int64, error) {
	return s.confirmationRepo.DeleteExpired(ctx, time.Now().Add(-confirmCodeTTL))
}
