package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/config"
	"github.com/drstein77/storefront/internal/controllers"
	"github.com/drstein77/storefront/internal/dbkeeper"
	"github.com/drstein77/storefront/internal/logger"
	"github.com/drstein77/storefront/internal/storage"
	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	ctx    context.Context
	option *config.Options

	Log *logger.Logger
}

// NewServer creates a new Server instance with the provided context
func NewServer(ctx context.Context, option *config.Options, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              option.RunAddr(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ctx:    ctx,
		option: option,
		Log:    log,
	}
}

// NewSession wires the catalog client, the optional observation keeper and a
// session store from option. The returned func releases everything.
func NewSession(ctx context.Context, option *config.Options, log *logger.Logger) (*storage.Store, func()) {
	client := catalog.NewClient(option.CatalogBaseURL(), option.CatalogTimeout(), log.Named("catalog"))

	var keeper storage.Keeper
	kp := dbkeeper.NewDBKeeper(ctx, option.DataBaseDSN, log.Named("dbkeeper"))
	if kp != nil {
		keeper = kp
	}

	store := storage.NewStore(ctx, client, keeper, log.Named("store"),
		storage.WithRefineWindow(option.RefineWindow()),
		storage.WithSearchDebounce(option.SearchDebounce()),
	)

	return store, func() {
		store.Close()
		if kp != nil {
			kp.Close()
		}
	}
}

// Handler builds the HTTP API around store.
func Handler(store controllers.Store, option *config.Options, log *logger.Logger) http.Handler {
	basecontr := controllers.NewBaseController(store, log.Named("http"))

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   option.CORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/", basecontr.Route())
	return r
}

// Serve starts the session and the HTTP server. It returns once the server
// has been shut down.
func (server *Server) Serve() error {
	store, release := NewSession(server.ctx, server.option, server.Log)
	defer release()

	store.Start()

	server.srv.Handler = Handler(store, server.option, server.Log)

	server.Log.Info("Running server", zap.String("address", server.option.RunAddr()))
	if err := server.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		server.Log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits up to timeout for active ones.
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.srv.Shutdown(ctx); err != nil {
		server.Log.Error("Server shutdown error", zap.Error(err))
		return
	}
	server.Log.Info("Server has been shut down")
}
