package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-login/internal/database"
)

var (
	_ database.AuthEventWriter = (*AuthEventRepository)(nil)
	_ database.AuthEventReader = (*AuthEventRepository)(nil)
)

// AuthEventRepository stores register and login attempts.
type AuthEventRepository struct {
	pool *Pool
}

// NewAuthEventRepository creates a new PostgreSQL audit repository
func NewAuthEventRepository(pool *Pool) *AuthEventRepository {
	return &AuthEventRepository{pool: pool}
}

// Record inserts an event
func (r *AuthEventRepository) Record(ctx context.Context, event *database.AuthEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var distance sql.NullFloat64
	if event.Distance != nil {
		distance = sql.NullFloat64{Float64: *event.Distance, Valid: true}
	}

	query := `
		INSERT INTO auth_events (id, session_id, kind, outcome, distance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, event.ID, event.SessionID, event.Kind, event.Outcome, distance, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	return nil
}

// Recent returns the newest events first
func (r *AuthEventRepository) Recent(ctx context.Context, limit int) ([]database.AuthEvent, error) {
	if limit <= 0 {
		limit = database.DefaultRecentEvents
	}

	query := `
		SELECT id, session_id, kind, outcome, distance, created_at
		FROM auth_events
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query auth events: %w", err)
	}
	defer rows.Close()

	var events []database.AuthEvent
	for rows.Next() {
		var e database.AuthEvent
		var distance sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Outcome, &distance, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan auth event: %w", err)
		}
		if distance.Valid {
			d := distance.Float64
			e.Distance = &d
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth events: %w", err)
	}
	return events, nil
}
