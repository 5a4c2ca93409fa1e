// Package services provides article generation orchestration.
package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kimhsiao/blogai/internal/db"
	"github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/models"
)

// DefaultTopic is used when a generation request names no topic.
const DefaultTopic = "Tecnologia"

// DefaultSeedTopics populate an empty store, one article each, in order.
var DefaultSeedTopics = []string{
	"Inteligência Artificial",
	"Desenvolvimento Web",
	"Cloud Computing",
	"Cibersegurança",
	"Machine Learning",
}

// NotFoundMessage is reported when an article id matches nothing.
const NotFoundMessage = "Article not found"

// ArticleGenerator produces article content. Implementations must not fail.
type ArticleGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest) models.GeneratedArticle
}

// ArticleService coordinates the generator and the article store.
type ArticleService struct {
	store      db.ArticleStore
	generator  ArticleGenerator
	events     EventSink
	seedTopics []string
	logger     *logging.Logger

	// Collapses concurrent seeding in this process into one run.
	seeding singleflight.Group
}

// Option configures an ArticleService.
type Option func(*ArticleService)

// WithEvents sets the sink notified of created and deleted articles.
func WithEvents(sink EventSink) Option {
	return func(s *ArticleService) { s.events = sink }
}

// WithSeedTopics overrides DefaultSeedTopics. An empty list keeps the defaults.
func WithSeedTopics(topics []string) Option {
	return func(s *ArticleService) {
		if len(topics) > 0 {
			s.seedTopics = topics
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *ArticleService) { s.logger = l }
}

// NewArticleService creates a new ArticleService.
func NewArticleService(store db.ArticleStore, generator ArticleGenerator, opts ...Option) *ArticleService {
	s := &ArticleService{
		store:      store,
		generator:  generator,
		events:     nopSink{},
		seedTopics: DefaultSeedTopics,
		logger:     logging.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAndSave generates one article for req and persists it as published.
// Generation itself cannot fail; store failures are returned.
func (s *ArticleService) GenerateAndSave(ctx context.Context, req models.GenerationRequest) (*models.Article, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New(errors.ErrInvalid, "topic must not be empty")
	}
	req = req.WithDefaults()

	generated := s.generator.Generate(ctx, req)
	article, err := s.store.Create(ctx, generated.ToInput())
	if err != nil {
		s.logger.Error("failed to save generated article", err, map[string]interface{}{
			"topic": req.Topic,
		})
		return nil, err
	}

	s.logger.Info("article saved", map[string]interface{}{
		"id":     article.ID,
		"title":  article.Title,
		"topic":  req.Topic,
		"source": string(generated.Source),
	})
	s.publish(EventArticleCreated, article)
	return article, nil
}

// GenerateBatch runs one independent generate-and-save per topic, in order.
// A failed topic is recorded and the rest still run.
func (s *ArticleService) GenerateBatch(ctx context.Context, topics []string) BatchReport {
	report := BatchReport{Started: time.Now(), Results: make([]TopicResult, 0, len(topics))}
	for _, topic := range topics {
		article, err := s.GenerateAndSave(ctx, models.GenerationRequest{Topic: topic})
		result := TopicResult{Topic: topic, Article: article}
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("topic generation failed", map[string]interface{}{
				"topic": topic,
				"error": err.Error(),
			})
		}
		report.Results = append(report.Results, result)
	}
	report.Finished = time.Now()
	return report
}

// SeedIfEmpty generates one article per seed topic when no published article
// exists. Only the emptiness check can fail the call.
func (s *ArticleService) SeedIfEmpty(ctx context.Context) (SeedReport, error) {
	v, err, shared := s.seeding.Do("seed", func() (interface{}, error) {
		existing, err := s.store.ListPublished(ctx, db.ListOptions{Limit: 1})
		if err != nil {
			return SeedReport{}, err
		}
		if len(existing) > 0 {
			return SeedReport{}, nil
		}

		s.logger.Info("store is empty, seeding initial articles", map[string]interface{}{
			"topics": len(s.seedTopics),
		})
		return SeedReport{Seeded: true, BatchReport: s.GenerateBatch(ctx, s.seedTopics)}, nil
	})
	if shared {
		s.logger.Debug("joined in-flight seeding run")
	}
	return v.(SeedReport), err
}

// ListArticles returns a page of articles. When the first page of published
// articles is empty the store is seeded and the page re-read.
func (s *ArticleService) ListArticles(ctx context.Context, opts db.ListOptions) ([]*models.Article, error) {
	articles, err := s.store.ListPublished(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(articles) > 0 || opts.Offset > 0 || (opts.Status != "" && opts.Status != models.StatusPublished) {
		return articles, nil
	}

	report, err := s.SeedIfEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if report.Seeded && report.Succeeded() == 0 {
		s.logger.Warn("seeding produced no articles")
	}
	return s.store.ListPublished(ctx, opts)
}

// CreateArticle stores a caller-supplied article.
func (s *ArticleService) CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	article, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(EventArticleCreated, article)
	return article, nil
}

// ViewArticle returns the article after counting the view.
func (s *ArticleService) ViewArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.store.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, errors.New(errors.ErrNotFound, NotFoundMessage)
	}
	return article, nil
}

// DeleteArticle removes the article and returns its last state.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, errors.New(errors.ErrNotFound, NotFoundMessage)
	}
	s.logger.Info("article deleted", map[string]interface{}{"id": article.ID})
	s.publish(EventArticleDeleted, article)
	return article, nil
}

// CountArticles returns how many articles have the given status.
func (s *ArticleService) CountArticles(ctx context.Context, status models.Status) (int, error) {
	return s.store.Count(ctx, status)
}

func (s *ArticleService) publish(eventType string, article *models.Article) {
	s.events.Publish(Event{Type: eventType, Data: article, Timestamp: time.Now().UTC()})
}
