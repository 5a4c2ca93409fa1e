package main

import (
	"fmt"
	"os"

	"github.com/kimhsiao/blogai/internal/config"
	"github.com/kimhsiao/blogai/internal/db"
	"github.com/kimhsiao/blogai/internal/generator"
	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/services"
)

// app holds the components every command needs.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	db        *db.DB
	repo      *db.Repository
	generator *generator.Generator
}

// openApp loads configuration, opens and migrates the database and builds
// the content generator. Logs go to stderr so command output stays clean.
func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	logger := logging.Get()

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	if cfg.AI.Token == "" {
		logger.Warn("HF_TOKEN not configured, articles will use fallback templates")
	}
	client := generator.NewRouterClient(generator.Settings{
		Token:   cfg.AI.Token,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AITimeout(),
	})

	logger.Debug("application initialized", map[string]interface{}{
		"data_dir": cfg.DataDir,
		"model":    client.Model(),
		"env":      cfg.Env,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        database,
		repo:      db.NewRepository(database.DB),
		generator: generator.New(client, generator.WithLogger(logger)),
	}, nil
}

// service builds the article service over the app's store and generator.
func (a *app) service(opts ...services.Option) *services.ArticleService {
	opts = append([]services.Option{
		services.WithLogger(a.logger),
		services.WithSeedTopics(a.cfg.Generation.SeedTopics),
	}, opts...)
	return services.NewArticleService(a.repo, a.generator, opts...)
}

func (a *app) Close() error {
	a.repo.Close()
	return a.db.Close()
}
