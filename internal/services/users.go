package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"MINDBRIDGE_BACK-END/internal/models"
)

// Account providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// NewAccount is the data needed to create a user and their empty profile
type NewAccount struct {
	Email        string
	PasswordHash string
	Provider     string
	DisplayName  *string
	FirstName    *string
	LastName     *string
	AvatarURL    *string
}

// Verification is a pending password reset code
type Verification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Email     string
	Code      string
	ExpiresAt time.Time
	Used      bool
}

// UserService manages accounts and password reset codes
type UserService interface {
	Create(ctx context.Context, acc NewAccount) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateVerification(ctx context.Context, userID uuid.UUID, email, code string, ttl time.Duration) error
	LatestVerification(ctx context.Context, userID uuid.UUID, email string) (*Verification, error)
	ResetPassword(ctx context.Context, userID uuid.UUID, verificationID uuid.UUID, passwordHash string) error
}

type userService struct {
	db DB
}

func NewUserService(db DB) UserService {
	return &userService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts the user and an empty profile in one transaction
func (s *userService) Create(ctx context.Context, acc NewAccount) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if acc.Provider == "" {
		acc.Provider = ProviderPassword
	}

	var u models.User
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
insert into public.users (email, password_hash, role, provider)
values ($1, $2, 'user', $3)
returning id, email, password_hash, role, provider, created_at, updated_at`,
			normalizeEmail(acc.Email), acc.PasswordHash, acc.Provider,
		).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Provider, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
insert into public.profiles (user_id, display_name, first_name, last_name, avatar_url)
values ($1, nullif($2, ''), nullif($3, ''), nullif($4, ''), nullif($5, ''))`,
			u.ID, deref(acc.DisplayName), deref(acc.FirstName), deref(acc.LastName), deref(acc.AvatarURL))
		return err
	})
	if err != nil {
		if code, constraint := pgCode(err); code == uniqueViolation && constraint == usersEmailConstraint {
			return nil, fmt.Errorf("email: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

const selectUser = `select id, email, password_hash, role, provider, created_at, updated_at from public.users`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Provider, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	return scanUser(s.db.QueryRow(ctx, selectUser+` where email = $1`, normalizeEmail(email)))
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	return scanUser(s.db.QueryRow(ctx, selectUser+` where id = $1`, id))
}

func (s *userService) CreateVerification(ctx context.Context, userID uuid.UUID, email, code string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.db.Exec(ctx, `
insert into public.auth_verifications (user_id, email, code, expires_at)
values ($1, $2, $3, $4)`,
		userID, normalizeEmail(email), code, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

func (s *userService) LatestVerification(ctx context.Context, userID uuid.UUID, email string) (*Verification, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var v Verification
	err := s.db.QueryRow(ctx, `
select id, user_id, email, code, expires_at, used
from public.auth_verifications
where user_id = $1 and email = $2
order by created_at desc
limit 1`, userID, normalizeEmail(email)).Scan(&v.ID, &v.UserID, &v.Email, &v.Code, &v.ExpiresAt, &v.Used)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ResetPassword stores the new hash and burns the verification code
func (s *userService) ResetPassword(ctx context.Context, userID uuid.UUID, verificationID uuid.UUID, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`update public.auth_verifications set used = true where id = $1 and user_id = $2 and used = false`,
			verificationID, userID)
		if err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("verification code: %w", ErrNotFound)
		}

		if _, err := tx.Exec(ctx,
			`update public.users set password_hash = $1, updated_at = now() where id = $2`,
			passwordHash, userID); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
