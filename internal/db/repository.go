package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
)

// DefaultListLimit caps ticket listings when no limit is given.
const DefaultListLimit = 50

// Repository persists human handoff tickets.
type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewRepositoryFromDB(db)
	if err := repo.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return repo, nil
}

func NewRepositoryFromDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) initSchema(ctx context.Context) error {
	logger.Info().Msg("Initializing schema...")
	query := `
	CREATE TABLE IF NOT EXISTS handoff_tickets (
		id VARCHAR(36) PRIMARY KEY,
		guest_id VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		emotion VARCHAR(32) NOT NULL,
		intensity VARCHAR(32) NOT NULL,
		service VARCHAR(32) NOT NULL,
		reason VARCHAR(64) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		INDEX idx_handoff_guest (guest_id, created_at)
	);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create handoff_tickets table: %w", err)
	}
	return nil
}

// SaveTicket inserts a ticket, assigning an id and timestamp when missing.
func (r *Repository) SaveTicket(ctx context.Context, ticket core.HandoffTicket) (core.HandoffTicket, error) {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO handoff_tickets (id, guest_id, message, emotion, intensity, service, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.GuestID,
		ticket.Message,
		string(ticket.Emotion),
		string(ticket.Intensity),
		string(ticket.Service),
		string(ticket.Reason),
		ticket.CreatedAt,
	)
	if err != nil {
		return core.HandoffTicket{}, fmt.Errorf("failed to save handoff ticket: %w", err)
	}
	return ticket, nil
}

// NotifyHandoff stores the ticket so staff can pick it up.
func (r *Repository) NotifyHandoff(ctx context.Context, ticket core.HandoffTicket) error {
	_, err := r.SaveTicket(ctx, ticket)
	return err
}

// ListTickets returns the newest tickets first. An empty guestID lists all guests.
func (r *Repository) ListTickets(ctx context.Context, guestID string, limit int) ([]core.HandoffTicket, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, guest_id, message, emotion, intensity, service, reason, created_at FROM handoff_tickets`
	args := []any{}
	if guestID != "" {
		query += ` WHERE guest_id = ?`
		args = append(args, guestID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query handoff tickets: %w", err)
	}
	defer rows.Close()

	tickets := []core.HandoffTicket{}
	for rows.Next() {
		var (
			t                                   core.HandoffTicket
			emotion, intensity, service, reason string
		)
		if err := rows.Scan(&t.ID, &t.GuestID, &t.Message, &emotion, &intensity, &service, &reason, &t.CreatedAt); err != nil {
			logger.Warn().Err(err).Msg("failed to scan handoff ticket")
			continue
		}
		t.Emotion = core.EmotionType(emotion)
		t.Intensity = core.Intensity(intensity)
		t.Service = core.ServiceCategory(service)
		t.Reason = core.EscalationReason(reason)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read handoff tickets: %w", err)
	}
	return tickets, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
