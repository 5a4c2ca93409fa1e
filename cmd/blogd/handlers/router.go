package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/kimhsiao/blogai/internal/logging"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Articles      ArticleService
	Hub           *Hub            // optional; enables GET /api/events
	Scheduler     SchedulerStatus // optional; GET /api/scheduler reports 404 when nil
	AllowedOrigin string
	Static        fs.FS // optional SPA root
	Logger        *logging.Logger
	Now           func() time.Time
}

// NewRouter builds the mux and wraps it in the standard middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Get()
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	articles := NewArticleHandler(cfg.Articles, cfg.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", HealthHandler(cfg.Now))
	mux.HandleFunc("GET /api/articles", articles.List)
	mux.HandleFunc("POST /api/articles", articles.Create)
	mux.HandleFunc("POST /api/articles/generate", articles.Generate)
	mux.HandleFunc("GET /api/articles/{id}", articles.Get)
	mux.HandleFunc("DELETE /api/articles/{id}", articles.Delete)
	mux.HandleFunc("GET /api/scheduler", SchedulerHandler(cfg.Scheduler))
	if cfg.Hub != nil {
		mux.HandleFunc("GET /api/events", cfg.Hub.ServeWS)
	}
	if cfg.Static != nil {
		mux.Handle("/", SPAHandler(cfg.Static))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			writeErrorMessage(w, http.StatusNotFound, "Not found")
		})
	}

	return Chain(mux,
		RequestID,
		AccessLog(cfg.Logger),
		Recover(cfg.Logger),
		CORS(cfg.AllowedOrigin),
	)
}
