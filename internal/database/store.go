package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the recipient-registry operations used by the pipeline.
// Writes are idempotent upserts; reads are point-in-time full scans.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser registers a private-chat user id.
	UpsertUser(ctx context.Context, userID int64) error

	// UpsertGroup registers a group chat id.
	UpsertGroup(ctx context.Context, chatID int64) error

	// ListUsers returns all known user ids.
	ListUsers(ctx context.Context) ([]int64, error)

	// ListGroups returns all known group chat ids.
	ListGroups(ctx context.Context) ([]int64, error)

	// Recipients returns the deduplicated union of users and groups,
	// a point-in-time snapshot for one broadcast run.
	Recipients(ctx context.Context) ([]int64, error)

	// RunMaintenance performs periodic database maintenance (VACUUM).
	RunMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertUser(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	query := `
        INSERT INTO users (user_id, active, created_at, updated_at)
        VALUES (?, 1, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET active = 1, updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, userID, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}

func (s *sqlxStore) UpsertGroup(ctx context.Context, chatID int64) error {
	now := time.Now().UTC()
	query := `
        INSERT INTO groups (chat_id, active, created_at, updated_at)
        VALUES (?, 1, ?, ?)
        ON CONFLICT(chat_id) DO UPDATE SET active = 1, updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, chatID, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting group", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to upsert group %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlxStore) ListUsers(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users WHERE active = 1;`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) ListGroups(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT chat_id FROM groups WHERE active = 1;`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing groups", "error", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) Recipients(ctx context.Context) ([]int64, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(users)+len(groups))
	recipients := make([]int64, 0, len(users)+len(groups))
	for _, id := range append(users, groups...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients, nil
}

func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		s.logger.ErrorContext(ctx, "Error running database maintenance", "error", err)
		return fmt.Errorf("failed to run maintenance: %w", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
