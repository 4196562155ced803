package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"Plant3D/internal/auth"
	"Plant3D/internal/calc/autodesign"
	"Plant3D/internal/calc/batch"
	"Plant3D/internal/calc/blockage"
	"Plant3D/internal/calc/erosion"
	"Plant3D/internal/calc/flow"
	"Plant3D/internal/calc/geometry"
	"Plant3D/internal/calc/importer"
	"Plant3D/internal/calc/margin"
	"Plant3D/internal/calc/parallel"
	"Plant3D/internal/calc/recommend"
	"Plant3D/internal/calc/report"
	"Plant3D/internal/calc/risk"
	"Plant3D/internal/calc/separation"
	"Plant3D/internal/calc/series"
	"Plant3D/internal/config"
	"Plant3D/internal/dashboard"
	"Plant3D/internal/datasheet"
	"Plant3D/internal/extractor"
	"Plant3D/internal/modeler"
	"Plant3D/internal/observability"
	"Plant3D/internal/repo"
)

var (
	useMemory bool
	insecure  bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API and dashboard websocket",
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().BoolVar(&useMemory, "memory", false, "Keep users and reviews in memory instead of Postgres")
	serverCmd.Flags().BoolVar(&insecure, "insecure", false, "Serve plain HTTP (local development only)")
}

// Deps is everything HandleList wires into the router.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Users   repo.UserRepository
	Reviews repo.ReviewRepository
	DB      observability.Pinger
	Clock   clockwork.Clock
}

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, d Deps) {
	c := d.Config
	mux.Use(d.Metrics.Middleware)

	mux.Handle("/healthz", &observability.Health{DB: d.DB}).Methods("GET")
	mux.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authEnv := &auth.Authenv{JWTkey: []byte(c.TokenKey), Repo: d.Users, Logger: d.Logger}

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	mux.Handle("/ws", authEnv.OptionalAuth(dashboard.NewServer(upgrader, c.Defaults, d.Reviews, d.Logger, d.Metrics)))

	limiter := auth.NewIPRateLimiter(rate.Limit(c.Server.RateLimit), c.Server.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	tools := api.PathPrefix("/tools").Subrouter()
	tools.HandleFunc("/geometry/calc", (&geometry.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/flow/calc", (&flow.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/parallel/calc", (&parallel.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/series/calc", (&series.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/separation/calc", (&separation.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/blockage/calc", (&blockage.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/erosion/calc", (&erosion.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/margin/calc", (&margin.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/risk/calc", (&risk.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/autodesign/calc", (&autodesign.Handler{}).Calc).Methods("POST")
	tools.HandleFunc("/batch/calc", (&batch.Handler{Defaults: c.Defaults}).Calc).Methods("POST")
	tools.HandleFunc("/recommend/calc", (&recommend.Handler{Defaults: c.Defaults}).Calc).Methods("POST")
	tools.HandleFunc("/import/xlsx", (&importer.Handler{Defaults: c.Defaults}).Scenarios).Methods("POST")
	tools.HandleFunc("/report/pdf", (&report.Handler{Defaults: c.Defaults, Clock: d.Clock}).Generate).Methods("POST")

	exporter := modeler.NewExporter(c.Paths.Models, d.Logger)
	exporter.Clock = d.Clock
	sheets := &datasheet.Handler{
		Repo:      d.Reviews,
		Extractor: extractor.New(d.Logger),
		Exporter:  exporter,
		Defaults:  c.Defaults,
		Variant:   c.Variant,
		UploadDir: c.Paths.Uploads,
		MaxUpload: c.Server.MaxUploadBytes,
		Clock:     d.Clock,
		Logger:    d.Logger,
		Metrics:   d.Metrics,
	}

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/datasheets", sheets.Upload).Methods("POST")
	secureApi.HandleFunc("/datasheets", sheets.List).Methods("GET")
	secureApi.HandleFunc("/datasheets/{id}", sheets.Get).Methods("GET")
	secureApi.HandleFunc("/datasheets/{id}", sheets.Update).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/datasheets/{id}/evaluate", sheets.Evaluate).Methods("POST")
	secureApi.HandleFunc("/datasheets/{id}/model", sheets.Model).Methods("GET")
	secureApi.HandleFunc("/datasheets/{id}/report", sheets.Report).Methods("POST")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.TokenKey == "" {
		return errors.New("TOKEN_KEY environment variable is not set")
	}

	deps := Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Clock:   clockwork.NewRealClock(),
	}
	if useMemory {
		mem := repo.NewMemory()
		deps.Users, deps.Reviews = mem, mem
		logger.Warn("using in-memory storage, data is lost on exit")
	} else {
		db, err := repo.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repo.Migrate(ctx, db); err != nil {
			return err
		}
		deps.Users = repo.NewPostgresUserDB(db)
		deps.Reviews = repo.NewPostgresReviewDB(db)
		deps.DB = db
	}

	router := mux.NewRouter()
	HandleList(router, deps)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: CORS(router),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.Bool("tls", !insecure))
		var err error
		if insecure {
			err = server.ListenAndServe()
		} else {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	logger.Info("server stopped")
	return nil
}
