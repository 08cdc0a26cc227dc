package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/matching"
	"MINDBRIDGE_BACK-END/internal/models"
)

// ProfileService reads and writes the caller's profile and lists candidate peers
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, error)
	// Sync reconciles client-cached onboarding data. Non-empty server values win.
	Sync(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, []string, []string, error)
	ListCandidates(ctx context.Context, viewerID uuid.UUID, q CandidateQuery) ([]models.Profile, error)
}

type profileService struct {
	db DB
}

func NewProfileService(db DB) ProfileService {
	return &profileService{db: db}
}

const selectProfile = `
select
	p.user_id,
	u.email,
	p.display_name,
	p.first_name,
	p.last_name,
	p.avatar_url,
	p.location,
	p.support_type,
	p.support_preferences,
	p.journey_note,
	p.is_active,
	p.rating::float8,
	p.people_supported,
	p.availability,
	p.certifications,
	p.onboarding_completed,
	p.profile_completed,
	p.created_at,
	p.updated_at
from public.profiles p
join public.users u on u.id = p.user_id`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.UserID,
		&p.Email,
		&p.DisplayName,
		&p.FirstName,
		&p.LastName,
		&p.AvatarURL,
		&p.Location,
		&p.SupportType,
		&p.SupportPreferences,
		&p.JourneyNote,
		&p.IsActive,
		&p.Rating,
		&p.PeopleSupported,
		&p.Availability,
		&p.Certifications,
		&p.OnboardingCompleted,
		&p.ProfileCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	return s.get(ctx, s.db, userID)
}

func (s *profileService) get(ctx context.Context, q querier, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(q.QueryRow(ctx, selectProfile+` where p.user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ValidateProfileUpdate rejects values the schema would refuse
func ValidateProfileUpdate(req dto.ProfileUpdateRequest) error {
	if req.SupportType != nil {
		st := strings.ToLower(strings.TrimSpace(*req.SupportType))
		if st != "" && !models.IsValidSupportType(st) {
			return fmt.Errorf("%w: support_type must be seeker or giver", ErrValidation)
		}
	}
	return nil
}

// updateSet builds the SET clause for the provided fields. Empty strings clear
// nullable columns. Preferences are stored normalized.
func updateSet(req dto.ProfileUpdateRequest) ([]string, []any) {
	set := []string{}
	args := []any{}

	addStr := func(col string, p *string) {
		if p == nil {
			return
		}
		var v any = strings.TrimSpace(*p)
		if v == "" {
			v = nil
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addBool := func(col string, p *bool) {
		if p == nil {
			return
		}
		args = append(args, *p)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	addStr("display_name", req.DisplayName)
	addStr("first_name", req.FirstName)
	addStr("last_name", req.LastName)
	addStr("avatar_url", req.AvatarURL)
	addStr("location", req.Location)
	if req.SupportType != nil {
		st := strings.ToLower(strings.TrimSpace(*req.SupportType))
		addStr("support_type", &st)
	}
	if req.SupportPreferences != nil {
		args = append(args, matching.NormalizePreferences(matching.SplitPreferences(*req.SupportPreferences)))
		set = append(set, fmt.Sprintf("support_preferences = $%d", len(args)))
	}
	addStr("journey_note", req.JourneyNote)
	addBool("is_active", req.IsActive)
	addStr("availability", req.Availability)
	addBool("onboarding_completed", req.OnboardingCompleted)
	addBool("profile_completed", req.ProfileCompleted)

	return set, args
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, error) {
	if err := ValidateProfileUpdate(req); err != nil {
		return nil, err
	}
	set, args := updateSet(req)
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	args = append(args, userID)
	q := fmt.Sprintf(`update public.profiles set %s, updated_at = now() where user_id = $%d`,
		strings.Join(set, ", "), len(args))

	ct, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.get(ctx, s.db, userID)
}

func (s *profileService) Sync(ctx context.Context, userID uuid.UUID, req dto.ProfileUpdateRequest) (*models.Profile, []string, []string, error) {
	if err := ValidateProfileUpdate(req); err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var (
		out     *models.Profile
		applied []string
		ignored []string
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		current, err := scanProfile(tx.QueryRow(ctx, selectProfile+` where p.user_id = $1 for update of p`, userID))
		if err != nil {
			if isNoRows(err) {
				return ErrNotFound
			}
			return err
		}

		var patch dto.ProfileUpdateRequest
		patch, applied, ignored = MergeSync(*current, req)

		if set, args := updateSet(patch); len(set) > 0 {
			args = append(args, userID)
			q := fmt.Sprintf(`update public.profiles set %s, updated_at = now() where user_id = $%d`,
				strings.Join(set, ", "), len(args))
			if _, err := tx.Exec(ctx, q, args...); err != nil {
				return err
			}
		}

		out, err = s.get(ctx, tx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, fmt.Errorf("sync profile: %w", err)
	}
	return out, applied, ignored, nil
}

// MergeSync keeps every non-empty server value and fills empty ones from the
// client. Completion flags only move from false to true; is_active is never
// taken from a client cache.
func MergeSync(server models.Profile, client dto.ProfileUpdateRequest) (dto.ProfileUpdateRequest, []string, []string) {
	var patch dto.ProfileUpdateRequest
	applied := []string{}
	ignored := []string{}

	fillStr := func(name string, srv *string, cli *string, dst **string) {
		if cli == nil || strings.TrimSpace(*cli) == "" {
			return
		}
		if srv != nil && strings.TrimSpace(*srv) != "" {
			ignored = append(ignored, name)
			return
		}
		*dst = cli
		applied = append(applied, name)
	}
	fillFlag := func(name string, srv bool, cli *bool, dst **bool) {
		if cli == nil {
			return
		}
		if srv || !*cli {
			ignored = append(ignored, name)
			return
		}
		*dst = cli
		applied = append(applied, name)
	}

	fillStr("display_name", server.DisplayName, client.DisplayName, &patch.DisplayName)
	fillStr("first_name", server.FirstName, client.FirstName, &patch.FirstName)
	fillStr("last_name", server.LastName, client.LastName, &patch.LastName)
	fillStr("avatar_url", server.AvatarURL, client.AvatarURL, &patch.AvatarURL)
	fillStr("location", server.Location, client.Location, &patch.Location)
	fillStr("support_type", server.SupportType, client.SupportType, &patch.SupportType)
	fillStr("journey_note", server.JourneyNote, client.JourneyNote, &patch.JourneyNote)
	fillStr("availability", server.Availability, client.Availability, &patch.Availability)

	if client.SupportPreferences != nil && len(*client.SupportPreferences) > 0 {
		if len(server.SupportPreferences) > 0 {
			ignored = append(ignored, "support_preferences")
		} else {
			patch.SupportPreferences = client.SupportPreferences
			applied = append(applied, "support_preferences")
		}
	}

	if client.IsActive != nil {
		ignored = append(ignored, "is_active")
	}
	fillFlag("onboarding_completed", server.OnboardingCompleted, client.OnboardingCompleted, &patch.OnboardingCompleted)
	fillFlag("profile_completed", server.ProfileCompleted, client.ProfileCompleted, &patch.ProfileCompleted)

	return patch, applied, ignored
}

// CandidateQuery narrows the candidate pool in SQL, before scoring
type CandidateQuery struct {
	Limit       int
	ActiveOnly  bool
	SupportType string
}

// ListCandidates returns other users who picked a support type, active
// users first and then most recently updated.
func (s *profileService) ListCandidates(ctx context.Context, viewerID uuid.UUID, q CandidateQuery) ([]models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	if q.Limit <= 0 {
		q.Limit = 50
	}

	args := []any{viewerID}
	where := `
where p.user_id <> $1 and p.support_type is not null`
	if q.ActiveOnly {
		where += ` and p.is_active`
	}
	if q.SupportType != "" {
		args = append(args, q.SupportType)
		where += fmt.Sprintf(` and p.support_type = $%d`, len(args))
	}
	args = append(args, q.Limit)

	rows, err := s.db.Query(ctx, selectProfile+where+fmt.Sprintf(`
order by p.is_active desc, p.updated_at desc
limit $%d`, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	out := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}
