// Package db provides CRUD repository operations for articles.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/models"
)

// Default listing parameters.
const (
	DefaultListLimit = 100
)

// ListOptions selects a page of articles.
type ListOptions struct {
	Status models.Status
	Limit  int
	Offset int
}

// withDefaults fills blank fields: published status, limit 100, offset 0.
func (o ListOptions) withDefaults() ListOptions {
	if o.Status == "" {
		o.Status = models.StatusPublished
	}
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

const articleColumns = `id, title, description, content, tags, status, views, created_at, updated_at`

// Repository provides article persistence on top of SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time

	// Prepared statement cache keyed by query text.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// SetClock replaces the time source used for created_at/updated_at.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	// If another goroutine stored one first, keep theirs and close ours.
	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
// Should be called when the Repository is no longer needed.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.stmtCache.Delete(key)
		return true
	})
	return firstErr
}

// =====================================================
// Article Operations
// =====================================================

// Create inserts a new article with zero views and both timestamps set to now.
func (r *Repository) Create(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	in.Normalize()
	if reason := in.Validate(); reason != "" {
		return nil, errors.New(errors.ErrInvalid, reason)
	}

	now := r.now().UnixNano()
	query := `
	INSERT INTO articles (title, description, content, tags, status, views, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	RETURNING ` + articleColumns

	stmt, err := r.PrepareStmt(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, "create article", err)
	}

	article, err := scanArticle(stmt.QueryRowContext(ctx,
		in.Title, in.Description, in.Content, models.EncodeTags(in.Tags), string(in.Status), now, now))
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, "create article", err)
	}
	return article, nil
}

// ListPublished returns articles matching opts.Status, newest first.
// An empty page is an empty slice, not an error.
func (r *Repository) ListPublished(ctx context.Context, opts ListOptions) ([]*models.Article, error) {
	opts = opts.withDefaults()

	query := `
	SELECT ` + articleColumns + `
	FROM articles
	WHERE status = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?`

	stmt, err := r.PrepareStmt(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, "list articles", err)
	}

	rows, err := stmt.QueryContext(ctx, string(opts.Status), opts.Limit, opts.Offset)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, "list articles", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrStore, "scan article", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrStore, "list articles", err)
	}
	return articles, nil
}

// GetByID returns the article, or nil when no row matches.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.queryOne(ctx, "get article", `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
}

// IncrementViews bumps the view counter and updated_at in one statement and
// returns the post-increment row, or nil when no row matches.
func (r *Repository) IncrementViews(ctx context.Context, id string) (*models.Article, error) {
	query := `
	UPDATE articles
	SET views = views + 1, updated_at = ?
	WHERE id = ?
	RETURNING ` + articleColumns
	return r.queryOne(ctx, "increment views", query, id, r.now().UnixNano())
}

// Delete removes the article and returns its prior state, or nil when no row
// matches.
func (r *Repository) Delete(ctx context.Context, id string) (*models.Article, error) {
	return r.queryOne(ctx, "delete article", `DELETE FROM articles WHERE id = ? RETURNING `+articleColumns, id)
}

// Count returns the number of articles with the given status (published when
// blank).
func (r *Repository) Count(ctx context.Context, status models.Status) (int, error) {
	if status == "" {
		status = models.StatusPublished
	}

	stmt, err := r.PrepareStmt(ctx, `SELECT COUNT(*) FROM articles WHERE status = ?`)
	if err != nil {
		return 0, errors.Wrap(errors.ErrStore, "count articles", err)
	}

	var n int
	if err := stmt.QueryRowContext(ctx, string(status)).Scan(&n); err != nil {
		return 0, errors.Wrap(errors.ErrStore, "count articles", err)
	}
	return n, nil
}

// queryOne runs a single-row statement whose last placeholder is the article
// id. Leading args are bound before the id.
func (r *Repository) queryOne(ctx context.Context, op, query, id string, leading ...interface{}) (*models.Article, error) {
	rowID, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	stmt, err := r.PrepareStmt(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, op, err)
	}

	args := append(leading, rowID)
	article, err := scanArticle(stmt.QueryRowContext(ctx, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStore, op, err)
	}
	return article, nil
}

// parseID accepts positive base-10 integers; anything else cannot match a row.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanArticle normalizes a row: numeric id to text, tags to a sequence.
func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a                    models.Article
		id                   int64
		description, tags    sql.NullString
		status               string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &a.Title, &description, &a.Content, &tags, &status, &a.Views, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a.ID = strconv.FormatInt(id, 10)
	a.Description = description.String
	a.Tags = models.DecodeTags(tags.String)
	a.Status = models.Status(status)
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &a, nil
}
