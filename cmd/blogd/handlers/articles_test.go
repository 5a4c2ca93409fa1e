package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhsiao/blogai/internal/db"
	apperrors "github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/generator"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/models"
	"github.com/kimhsiao/blogai/internal/services"
)

func quietLogger() *logging.Logger {
	return logging.New(&bytes.Buffer{}, logging.LevelError)
}

// newTestService builds the real service stack on a temp-dir database with
// the model disabled, so every article comes from the fallback templates.
func newTestService(t *testing.T) (*services.ArticleService, *db.Repository) {
	t.Helper()
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate())

	repo := db.NewRepository(database.DB)
	t.Cleanup(func() { repo.Close() })

	logger := quietLogger()
	gen := generator.New(nil, generator.WithChooser(func(int) int { return 0 }), generator.WithLogger(logger))
	return services.NewArticleService(repo, gen, services.WithLogger(logger)), repo
}

func newTestRouter(t *testing.T) (http.Handler, *db.Repository) {
	t.Helper()
	svc, repo := newTestService(t)
	return NewRouter(RouterConfig{Articles: svc, Logger: quietLogger()}), repo
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeArticle(t *testing.T, rec *httptest.ResponseRecorder) models.Article {
	t.Helper()
	var a models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a), rec.Body.String())
	return a
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}

func TestListArticles_seedsEmptyStore(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/articles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-Total-Count"))

	var articles []models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 5)
	assert.Equal(t, "Machine Learning: Guia Completo", articles[0].Title)
	for _, a := range articles {
		assert.Equal(t, models.StatusPublished, a.Status)
		assert.NotNil(t, a.Tags)
	}
}

func TestListArticles_pagination(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodGet, "/api/articles", "")

	rec := do(t, h, http.MethodGet, "/api/articles?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var articles []models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 2)
	assert.Equal(t, "Cibersegurança: Guia Completo", articles[0].Title)
	assert.Equal(t, "5", rec.Header().Get("X-Total-Count"))
}

func TestListArticles_invalidParams(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/articles?limit=0",
		"/api/articles?limit=101",
		"/api/articles?limit=abc",
		"/api/articles?offset=-1",
	} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, decodeError(t, rec), target)
	}
}

func TestGetArticle_incrementsViews(t *testing.T) {
	h, repo := newTestRouter(t)
	created, err := repo.Create(context.Background(), models.ArticleInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	first := decodeArticle(t, do(t, h, http.MethodGet, "/api/articles/"+created.ID, ""))
	second := decodeArticle(t, do(t, h, http.MethodGet, "/api/articles/"+created.ID, ""))

	assert.Equal(t, int64(1), first.Views)
	assert.Equal(t, int64(2), second.Views)
}

func TestGetArticle_notFound(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, id := range []string{"999", "abc"} {
		rec := do(t, h, http.MethodGet, "/api/articles/"+id, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Article not found", decodeError(t, rec))
	}
}

func TestGenerateArticle(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/articles/generate", `{"topic":"Python"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	a := decodeArticle(t, rec)
	assert.Equal(t, []string{"python", "educação", "tutorial", "insights"}, a.Tags)
	assert.Equal(t, models.StatusPublished, a.Status)
	assert.Equal(t, int64(0), a.Views)
}

func TestGenerateArticle_defaults(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, body := range []string{"", "{}"} {
		rec := do(t, h, http.MethodPost, "/api/articles/generate", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		a := decodeArticle(t, rec)
		assert.Equal(t, "Tecnologia: Guia Completo", a.Title)
		assert.Equal(t, "tecnologia", a.Tags[0])
	}
}

func TestGenerateArticle_badRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/articles/generate", `{"topic":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/articles/generate", `{"topic":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "topic must not be empty", decodeError(t, rec))
}

func TestCreateArticle(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/articles", `{"title":"Hello","content":"World","tags":["a","b"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeArticle(t, rec)
	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, []string{"a", "b"}, a.Tags)

	rec = do(t, h, http.MethodPost, "/api/articles", `{"title":"","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/articles", `{"title":"x","content":"y","tags":["a,b"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/articles", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteArticle(t *testing.T) {
	h, repo := newTestRouter(t)
	created, err := repo.Create(context.Background(), models.ArticleInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodDelete, "/api/articles/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeArticle(t, rec).ID)

	rec = do(t, h, http.MethodDelete, "/api/articles/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Article not found", decodeError(t, rec))

	rec = do(t, h, http.MethodGet, "/api/articles/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// brokenService fails every call with a store error.
type brokenService struct{}

func (brokenService) ListArticles(context.Context, db.ListOptions) ([]*models.Article, error) {
	return nil, apperrors.Wrap(apperrors.ErrStore, "list articles", context.DeadlineExceeded)
}
func (brokenService) ViewArticle(context.Context, string) (*models.Article, error) {
	return nil, apperrors.New(apperrors.ErrStore, "boom")
}
func (brokenService) GenerateAndSave(context.Context, models.GenerationRequest) (*models.Article, error) {
	return nil, apperrors.New(apperrors.ErrStore, "boom")
}
func (brokenService) CreateArticle(context.Context, models.ArticleInput) (*models.Article, error) {
	return nil, apperrors.New(apperrors.ErrStore, "boom")
}
func (brokenService) DeleteArticle(context.Context, string) (*models.Article, error) {
	return nil, apperrors.New(apperrors.ErrStore, "boom")
}
func (brokenService) CountArticles(context.Context, models.Status) (int, error) {
	return 0, apperrors.New(apperrors.ErrStore, "boom")
}

func TestStoreFailures_are500(t *testing.T) {
	h := NewRouter(RouterConfig{Articles: brokenService{}, Logger: quietLogger()})

	requests := []struct{ method, target, body, wantMsg string }{
		{http.MethodGet, "/api/articles", "", "list articles: context deadline exceeded"},
		{http.MethodGet, "/api/articles/1", "", "boom"},
		{http.MethodPost, "/api/articles/generate", `{"topic":"Go"}`, "boom"},
		{http.MethodPost, "/api/articles", `{"title":"a","content":"b"}`, "boom"},
		{http.MethodDelete, "/api/articles/1", "", "boom"},
	}
	for _, r := range requests {
		rec := do(t, h, r.method, r.target, r.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, r.target)
		assert.Equal(t, r.wantMsg, decodeError(t, rec), r.target)
	}
}

func TestStoreFailures_loggedToRouterLogger(t *testing.T) {
	var buf bytes.Buffer
	h := NewRouter(RouterConfig{Articles: brokenService{}, Logger: logging.New(&buf, logging.LevelError)})

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("X-Request-ID", "0b6e2f8a-3c1d-4e5f-9a7b-2c4d6e8f0a1b")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "0b6e2f8a-3c1d-4e5f-9a7b-2c4d6e8f0a1b")
	assert.Contains(t, out, "context deadline exceeded")
}

func TestRequestBodyTooLarge(t *testing.T) {
	h, repo := newTestRouter(t)
	huge := strings.Repeat("a", MaxBodyBytes+1)

	rec := do(t, h, http.MethodPost, "/api/articles/generate", `{"topic":"`+huge+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decodeError(t, rec))

	rec = do(t, h, http.MethodPost, "/api/articles", `{"title":"t","content":"`+huge+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decodeError(t, rec))

	n, err := repo.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHealth(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	h := NewRouter(RouterConfig{Articles: brokenService{}, Logger: quietLogger(), Now: func() time.Time { return fixed }})

	rec := do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2024-05-06T07:08:09Z", body["timestamp"])
}

func TestSchedulerStatus_disabled(t *testing.T) {
	h := NewRouter(RouterConfig{Articles: brokenService{}, Logger: quietLogger()})

	rec := do(t, h, http.MethodGet, "/api/scheduler", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	h := NewRouter(RouterConfig{Articles: brokenService{}, Logger: quietLogger()})

	rec := do(t, h, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
