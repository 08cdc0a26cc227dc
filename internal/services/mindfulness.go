package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/models"
)

// MindfulnessService is CRUD over the caller's own entries
type MindfulnessService interface {
	List(ctx context.Context, userID uuid.UUID, entryType string) ([]models.MindfulnessEntry, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateMindfulnessRequest) (*models.MindfulnessEntry, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, req dto.UpdateMindfulnessRequest) (*models.MindfulnessEntry, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type mindfulnessService struct {
	db DB
}

func NewMindfulnessService(db DB) MindfulnessService {
	return &mindfulnessService{db: db}
}

const entryColumns = `id, user_id, entry_type, title, content, mood, category, created_at, updated_at`

func scanEntry(row pgx.Row) (*models.MindfulnessEntry, error) {
	var e models.MindfulnessEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Title, &e.Content, &e.Mood, &e.Category, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// ValidateNewEntry checks type and content of a new entry
func ValidateNewEntry(req dto.CreateMindfulnessRequest) error {
	if !models.IsValidEntryType(req.Type) {
		return fmt.Errorf("%w: type must be journal, gratitude or strength", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

func (s *mindfulnessService) List(ctx context.Context, userID uuid.UUID, entryType string) ([]models.MindfulnessEntry, error) {
	if entryType != "" && !models.IsValidEntryType(entryType) {
		return nil, fmt.Errorf("%w: unknown entry type %q", ErrValidation, entryType)
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
select `+entryColumns+`
from public.mindfulness_entries
where user_id = $1 and ($2 = '' or entry_type = $2)
order by created_at desc`, userID, entryType)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := []models.MindfulnessEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (s *mindfulnessService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateMindfulnessRequest) (*models.MindfulnessEntry, error) {
	if err := ValidateNewEntry(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	e, err := scanEntry(s.db.QueryRow(ctx, `
insert into public.mindfulness_entries (user_id, entry_type, title, content, mood, category)
values ($1, $2, nullif($3, ''), $4, nullif($5, ''), nullif($6, ''))
returning `+entryColumns,
		userID, req.Type, deref(req.Title), strings.TrimSpace(req.Content), deref(req.Mood), deref(req.Category)))
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return e, nil
}

// Update changes only provided fields of an entry the caller owns. Entries of
// other users are reported as not found.
func (s *mindfulnessService) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, req dto.UpdateMindfulnessRequest) (*models.MindfulnessEntry, error) {
	set := []string{}
	args := []any{}
	add := func(col string, p *string, required bool) error {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		if required && v == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrValidation, col)
		}
		var val any = v
		if v == "" {
			val = nil
		}
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		return nil
	}
	for _, f := range []struct {
		col      string
		val      *string
		required bool
	}{
		{"title", req.Title, false},
		{"content", req.Content, true},
		{"mood", req.Mood, false},
		{"category", req.Category, false},
	} {
		if err := add(f.col, f.val, f.required); err != nil {
			return nil, err
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	args = append(args, id, userID)
	q := fmt.Sprintf(`
update public.mindfulness_entries set %s, updated_at = now()
where id = $%d and user_id = $%d
returning `+entryColumns, strings.Join(set, ", "), len(args)-1, len(args))

	e, err := scanEntry(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

func (s *mindfulnessService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ct, err := s.db.Exec(ctx, `delete from public.mindfulness_entries where id = $1 and user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
