package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kimhsiao/blogai/internal/db"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/models"
	"github.com/kimhsiao/blogai/internal/services"
)

// MaxListLimit caps the page size of GET /api/articles.
const MaxListLimit = 100

// ArticleService is the orchestration surface the handlers need.
// *services.ArticleService satisfies it.
type ArticleService interface {
	ListArticles(ctx context.Context, opts db.ListOptions) ([]*models.Article, error)
	ViewArticle(ctx context.Context, id string) (*models.Article, error)
	GenerateAndSave(ctx context.Context, req models.GenerationRequest) (*models.Article, error)
	CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	DeleteArticle(ctx context.Context, id string) (*models.Article, error)
	CountArticles(ctx context.Context, status models.Status) (int, error)
}

// ArticleHandler handles article operations.
type ArticleHandler struct {
	svc    ArticleService
	logger *logging.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc ArticleService, logger *logging.Logger) *ArticleHandler {
	return &ArticleHandler{svc: svc, logger: logger}
}

// List handles GET /api/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, msg := parseListOptions(r)
	if msg != "" {
		writeErrorMessage(w, http.StatusBadRequest, msg)
		return
	}

	// Seeding may run on this request; let it finish if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	articles, err := h.svc.ListArticles(ctx, opts)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	total, err := h.svc.CountArticles(ctx, models.StatusPublished)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, articles)
}

func parseListOptions(r *http.Request) (db.ListOptions, string) {
	opts := db.ListOptions{Status: models.StatusPublished, Limit: MaxListLimit}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxListLimit {
			return opts, "limit must be an integer between 1 and 100"
		}
		opts.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return opts, "offset must be a non-negative integer"
		}
		opts.Offset = offset
	}
	return opts, ""
}

// Get handles GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.ViewArticle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// generateRequest distinguishes a missing topic (defaulted) from a blank one
// (rejected).
type generateRequest struct {
	Topic *string `json:"topic"`
	Style *string `json:"style"`
}

// Generate handles POST /api/articles/generate
func (h *ArticleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeBody(w, r, &body); err != nil && !stderrors.Is(err, io.EOF) {
		writeBodyError(w, err)
		return
	}

	req := models.GenerationRequest{Topic: services.DefaultTopic, Style: models.DefaultStyle}
	if body.Topic != nil {
		req.Topic = *body.Topic
	}
	if body.Style != nil {
		req.Style = *body.Style
	}

	article, err := h.svc.GenerateAndSave(context.WithoutCancel(r.Context()), req)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// Create handles POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ArticleInput
	if err := decodeBody(w, r, &in); err != nil {
		writeBodyError(w, err)
		return
	}

	article, err := h.svc.CreateArticle(r.Context(), in)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// Delete handles DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.DeleteArticle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}
