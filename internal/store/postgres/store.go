// Package postgres provides the Postgres-backed bookmark store used
// for authenticated identities. Rows are partitioned by user_id and no
// quota is enforced.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const columns = "id, url, title, summary, content, user_memo, thumbnail_url, tags, status, ai_status, created_at, updated_at, user_id"

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements bookmark.Repository on a pgx pool.
type Store struct {
	pool  dbPool
	table string
	idGen bookmark.IDGenerator
	clock bookmark.Clock
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config, idGen bookmark.IDGenerator, clock bookmark.Clock) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newStore(pool, cfg.Table, idGen, clock)
}

// NewStoreWithPool constructs a Store from an existing pool (primarily
// for testing).
func NewStoreWithPool(pool dbPool, table string, idGen bookmark.IDGenerator, clock bookmark.Clock) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newStore(pool, table, idGen, clock)
}

func newStore(pool dbPool, table string, idGen bookmark.IDGenerator, clock bookmark.Clock) (*Store, error) {
	if table == "" {
		table = "bookmarks"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table, idGen: idGen, clock: clock}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Save inserts a new bookmark row for the authenticated owner.
func (s *Store) Save(ctx context.Context, req bookmark.CreateRequest) (bookmark.Bookmark, error) {
	if req.Owner.UserID == "" {
		return bookmark.Bookmark{}, errors.New("authenticated identity is required")
	}
	id, err := s.idGen.NewID()
	if err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("generate bookmark id: %w", err)
	}
	now := s.clock.Now()
	created := bookmark.Bookmark{
		ID:        id,
		URL:       req.URL,
		UserMemo:  req.UserMemo,
		Tags:      []string{},
		Status:    bookmark.StatusUnread,
		AIStatus:  bookmark.AIStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    req.Owner.UserID,
	}

	query := fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`, s.table, columns)

	args := []any{
		created.ID,
		created.URL,
		created.Title,
		created.Summary,
		created.Content,
		created.UserMemo,
		created.ThumbnailURL,
		created.Tags,
		string(created.Status),
		string(created.AIStatus),
		created.CreatedAt,
		created.UpdatedAt,
		created.UserID,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}
	return created, nil
}

// FindAll returns the owner's rows ordered by created_at descending.
// Tag filters on set membership, status on equality, and searchQuery
// as a case-insensitive substring over title, summary, and url.
func (s *Store) FindAll(ctx context.Context, owner bookmark.Identity, filter bookmark.Filter) ([]bookmark.Bookmark, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1", columns, s.table)
	args := []any{owner.UserID}

	if filter.Tag != "" {
		args = append(args, filter.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.SearchQuery != "" {
		args = append(args, "%"+filter.SearchQuery+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d OR summary ILIKE $%d OR url ILIKE $%d)", n, n, n)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []bookmark.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}

// FindByID returns the owner's bookmark with the given id or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, owner bookmark.Identity, id string) (bookmark.Bookmark, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND user_id = $2", columns, s.table)
	b, err := scanBookmark(s.pool.QueryRow(ctx, query, id, owner.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmark.Bookmark{}, bookmark.ErrNotFound
		}
		return bookmark.Bookmark{}, err
	}
	return b, nil
}

// Delete removes the owner's bookmark. A missing id is surfaced as
// ErrNotFound rather than silently ignored.
func (s *Store) Delete(ctx context.Context, owner bookmark.Identity, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND user_id = $2", s.table)
	tag, err := s.pool.Exec(ctx, query, id, owner.UserID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bookmark.ErrNotFound
	}
	return nil
}

// RemoveAll clears every row in the owner's partition.
func (s *Store) RemoveAll(ctx context.Context, owner bookmark.Identity) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", s.table)
	if _, err := s.pool.Exec(ctx, query, owner.UserID); err != nil {
		return fmt.Errorf("remove all bookmarks: %w", err)
	}
	return nil
}

// Count returns the number of rows in the owner's partition.
func (s *Store) Count(ctx context.Context, owner bookmark.Identity) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = $1", s.table)
	var count int
	if err := s.pool.QueryRow(ctx, query, owner.UserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return count, nil
}

// Update merges the provided fields and refreshes updated_at. A missing
// id in the owner's partition fails with ErrNotFound.
func (s *Store) Update(ctx context.Context, owner bookmark.Identity, id string, update bookmark.Update) error {
	sets := []string{"updated_at = $1"}
	args := []any{s.clock.Now()}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Summary != nil {
		appendSet("summary", *update.Summary)
	}
	if update.Tags != nil {
		appendSet("tags", update.Tags)
	}
	if update.AIStatus != nil {
		appendSet("ai_status", string(*update.AIStatus))
	}

	args = append(args, id)
	idPos := len(args)
	args = append(args, owner.UserID)
	ownerPos := len(args)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND user_id = $%d",
		s.table, strings.Join(sets, ", "), idPos, ownerPos)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bookmark.ErrNotFound
	}
	return nil
}

func scanBookmark(row pgx.Row) (bookmark.Bookmark, error) {
	var b bookmark.Bookmark
	var status, aiStatus string
	err := row.Scan(
		&b.ID,
		&b.URL,
		&b.Title,
		&b.Summary,
		&b.Content,
		&b.UserMemo,
		&b.ThumbnailURL,
		&b.Tags,
		&status,
		&aiStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmark.Bookmark{}, err
		}
		return bookmark.Bookmark{}, fmt.Errorf("scan bookmark: %w", err)
	}
	b.Status = bookmark.Status(status)
	b.AIStatus = bookmark.AIStatus(aiStatus)
	return b, nil
}
