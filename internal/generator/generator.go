package generator

import (
	"context"
	"math/rand/v2"

	"github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/models"
)

// Chooser returns an index in [0, n).
type Chooser func(n int) int

// Generator produces articles, preferring the language model and falling
// back to local templates on any failure.
type Generator struct {
	client CompletionClient
	choose Chooser
	logger *logging.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithChooser replaces the random template chooser.
func WithChooser(c Chooser) Option {
	return func(g *Generator) { g.choose = c }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator. A nil client always takes the fallback path.
func New(client CompletionClient, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		choose: rand.IntN,
		logger: logging.Get(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails: errors from the model are logged and the fallback
// article is returned instead.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest) models.GeneratedArticle {
	req = req.WithDefaults()

	content, err := g.complete(ctx, req)
	if err != nil {
		g.logger.ErrorWithCode("AI generation failed, using fallback", string(errors.CodeOf(err)), err, map[string]interface{}{
			"topic": req.Topic,
			"style": req.Style,
		})
		return Fallback(req.Topic, g.choose)
	}

	g.logger.Info("article generated by model", map[string]interface{}{
		"topic": req.Topic,
		"chars": len(content),
	})
	return models.GeneratedArticle{
		Title:       Title(req.Topic, g.choose),
		Description: Truncate(content, AIDescriptionLen),
		Content:     content,
		Tags:        Tags(req.Topic),
		Source:      models.SourceAI,
	}
}

func (g *Generator) complete(ctx context.Context, req models.GenerationRequest) (string, error) {
	if g.client == nil {
		return "", errors.New(errors.ErrConfiguration, "no completion client configured")
	}
	raw, err := g.client.Complete(ctx, BuildPrompt(req))
	if err != nil {
		return "", err
	}
	content := Clean(raw)
	if content == "" {
		return "", errors.New(errors.ErrResponseFormat, "model returned only formatting markers")
	}
	return content, nil
}
