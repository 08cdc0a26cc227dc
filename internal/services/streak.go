package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"MINDBRIDGE_BACK-END/internal/models"
)

// StreakResult says what recording today's activity did to the streak
type StreakResult string

const (
	StreakStarted     StreakResult = "started"
	StreakIncremented StreakResult = "incremented"
	StreakReset       StreakResult = "reset"
	StreakUnchanged   StreakResult = "unchanged"
)

// Changed reports whether the counters moved
func (r StreakResult) Changed() bool { return r != StreakUnchanged }

// CalendarDay is the date of now in the named IANA zone, as UTC midnight.
// An empty zone means UTC.
func CalendarDay(now time.Time, tz string) (time.Time, error) {
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: unknown timezone %q", ErrValidation, tz)
		}
		loc = l
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextStreak applies an activity on day today to s. A second activity on the
// same day, or one dated before the last recorded day, changes nothing.
func NextStreak(s models.Streak, today time.Time) (models.Streak, StreakResult) {
	next := s
	result := StreakStarted

	if s.LastActivityDate != nil {
		last := *s.LastActivityDate
		switch {
		case sameDay(last, today) || last.After(today):
			return s, StreakUnchanged
		case sameDay(last, today.AddDate(0, 0, -1)):
			result = StreakIncremented
		default:
			result = StreakReset
		}
	}

	if result == StreakIncremented {
		next.CurrentStreak = s.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
	}
	next.LongestStreak = max(s.LongestStreak, next.CurrentStreak)
	next.TotalDays = s.TotalDays + 1
	day := today
	next.LastActivityDate = &day
	return next, result
}

// EffectiveStreak is s as seen on day today: a streak whose last day is
// before yesterday has lapsed and reads as zero.
func EffectiveStreak(s models.Streak, today time.Time) models.Streak {
	if s.LastActivityDate == nil {
		s.CurrentStreak = 0
		return s
	}
	last := *s.LastActivityDate
	if !sameDay(last, today) && !sameDay(last, today.AddDate(0, 0, -1)) && last.Before(today) {
		s.CurrentStreak = 0
	}
	return s
}

// StreakService records daily mindfulness activity
type StreakService interface {
	Record(ctx context.Context, userID uuid.UUID, today time.Time) (models.Streak, StreakResult, error)
	Get(ctx context.Context, userID uuid.UUID, today time.Time) (models.Streak, error)
}

type streakService struct {
	db DB
}

func NewStreakService(db DB) StreakService {
	return &streakService{db: db}
}

const streakColumns = `user_id, current_streak, longest_streak, total_days, last_activity_date, updated_at`

func scanStreak(row pgx.Row) (models.Streak, error) {
	var s models.Streak
	err := row.Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.TotalDays, &s.LastActivityDate, &s.UpdatedAt)
	return s, err
}

// Record locks the user's streak row so concurrent posts on the same day
// increment at most once.
func (s *streakService) Record(ctx context.Context, userID uuid.UUID, today time.Time) (models.Streak, StreakResult, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var (
		out    models.Streak
		result StreakResult
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`insert into public.user_streaks (user_id) values ($1) on conflict (user_id) do nothing`, userID); err != nil {
			return err
		}

		current, err := scanStreak(tx.QueryRow(ctx,
			`select `+streakColumns+` from public.user_streaks where user_id = $1 for update`, userID))
		if err != nil {
			return err
		}

		out, result = NextStreak(current, today)
		if !result.Changed() {
			return nil
		}

		out, err = scanStreak(tx.QueryRow(ctx, `
update public.user_streaks
set current_streak = $2, longest_streak = $3, total_days = $4, last_activity_date = $5, updated_at = now()
where user_id = $1
returning `+streakColumns,
			userID, out.CurrentStreak, out.LongestStreak, out.TotalDays, out.LastActivityDate.Format("2006-01-02")))
		return err
	})
	if err != nil {
		return models.Streak{}, "", fmt.Errorf("record streak: %w", err)
	}
	return out, result, nil
}

func (s *streakService) Get(ctx context.Context, userID uuid.UUID, today time.Time) (models.Streak, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	st, err := scanStreak(s.db.QueryRow(ctx,
		`select `+streakColumns+` from public.user_streaks where user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return models.Streak{UserID: userID}, nil
		}
		return models.Streak{}, fmt.Errorf("get streak: %w", err)
	}
	return EffectiveStreak(st, today), nil
}
