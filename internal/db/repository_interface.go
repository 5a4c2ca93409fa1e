// Package db provides repository interfaces for the article model.
package db

import (
	"context"

	"github.com/kimhsiao/blogai/internal/models"
)

// ArticleStore defines operations for article persistence.
// Lookups that match no row return (nil, nil); only backing-store failures
// are errors.
type ArticleStore interface {
	// Create inserts a new article.
	Create(ctx context.Context, in models.ArticleInput) (*models.Article, error)

	// ListPublished returns a page of articles with the given status, newest first.
	ListPublished(ctx context.Context, opts ListOptions) ([]*models.Article, error)

	// GetByID retrieves an article by ID.
	GetByID(ctx context.Context, id string) (*models.Article, error)

	// IncrementViews atomically bumps the view counter.
	IncrementViews(ctx context.Context, id string) (*models.Article, error)

	// Delete removes an article and returns its prior state.
	Delete(ctx context.Context, id string) (*models.Article, error)

	// Count returns the number of articles with the given status.
	Count(ctx context.Context, status models.Status) (int, error)
}

// Ensure *Repository implements the interface at compile time.
var _ ArticleStore = (*Repository)(nil)
