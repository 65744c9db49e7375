// Package store issues the parameterized queries behind the guestbook:
// paginated listings and transactional message creation.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"guestbook/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Store accesses the message table. All methods are request-scoped; the
// pool is the only shared state.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateParams carries an already-validated message into Create.
type CreateParams struct {
	Username   string
	WebsiteURL string
	Content    string
	Email      string
	IPAddress  string
	UserAgent  string
}

// likeEscaper neutralizes LIKE metacharacters so a username filter always
// matches as a literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns one page of messages, most recent first, plus the pagination
// summary for the (optionally filtered) result set. Out-of-range page/limit
// values are clamped rather than passed to the store as negative offsets.
func (s *Store) List(ctx context.Context, page, limit int, usernameFilter string) ([]model.MessageListing, model.Pagination, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := (page - 1) * limit

	query := `SELECT id, username, website_url, content, email, created_at FROM message`
	countQuery := `SELECT COUNT(*) FROM message`
	args := []any{}

	if usernameFilter != "" {
		query += ` WHERE username LIKE $1`
		countQuery += ` WHERE username LIKE $1`
		args = append(args, "%"+likeEscaper.Replace(usernameFilter)+"%")
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := s.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []model.MessageListing{}
	for rows.Next() {
		var m model.MessageListing
		var email string
		if err := rows.Scan(&m.ID, &m.Username, &m.WebsiteURL, &m.Content, &email, &m.CreatedAt); err != nil {
			return nil, model.Pagination{}, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.EmailHash = EmailHash(email)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to read message rows: %w", err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to count messages: %w", err)
	}

	return messages, model.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: model.Pages(total, limit),
	}, nil
}

// Create inserts a message and re-reads the stored row by its new id so the
// response reflects store-assigned defaults. Insert and read-back run in one
// transaction.
func (s *Store) Create(ctx context.Context, params CreateParams) (model.Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO message (username, website_url, content, email, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		params.Username, params.WebsiteURL, params.Content,
		params.Email, params.IPAddress, params.UserAgent,
	).Scan(&id)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	var m model.Message
	err = tx.QueryRow(ctx,
		`SELECT id, username, website_url, content, email, created_at
		 FROM message WHERE id = $1`, id,
	).Scan(&m.ID, &m.Username, &m.WebsiteURL, &m.Content, &m.Email, &m.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to read back message %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Message{}, fmt.Errorf("failed to commit message: %w", err)
	}

	return m, nil
}

// CountRecentByIP counts messages created from ip since the given instant.
// The spam guard uses this for its trailing-window cap.
func (s *Store) CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM message WHERE ip_address = $1 AND created_at > $2`,
		ip, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent messages for %s: %w", ip, err)
	}
	return n, nil
}
