package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/skillsmatch/apiserver/config"
	"github.com/skillsmatch/apiserver/internal/ai"
	"github.com/skillsmatch/apiserver/internal/ai/gemini"
	"github.com/skillsmatch/apiserver/internal/db"
	"github.com/skillsmatch/apiserver/internal/handlers"
	"github.com/skillsmatch/apiserver/internal/logger"
	"github.com/skillsmatch/apiserver/internal/mq"
	"github.com/skillsmatch/apiserver/internal/notify"
	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/internal/storage"
	"github.com/skillsmatch/apiserver/internal/store"
)

// Server wraps the HTTP server and its wired dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	log        *zap.Logger
}

// New wires the full dependency graph and constructs the Server.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	jobRepo := store.NewJobRepository(dbConn)
	appRepo := store.NewApplicationRepository(dbConn)
	interviewRepo := store.NewInterviewRepository(dbConn)
	assessmentRepo := store.NewAssessmentRepository(dbConn)
	notificationRepo := store.NewNotificationRepository(dbConn)

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	dispatcher := notify.NewDispatcher(notificationRepo, broker, cfg.Notify.Channel, log)

	userService := services.NewUserService(userRepo, dispatcher, cfg.FrontendURL)
	jobService := services.NewJobService(jobRepo)
	appService := services.NewApplicationService(appRepo, jobRepo, dispatcher, log)
	interviewService := services.NewInterviewService(interviewRepo, appRepo, dispatcher)
	assessmentService := services.NewAssessmentService(assessmentRepo, appRepo, dispatcher)
	notificationService := services.NewNotificationService(notificationRepo)

	var generator ai.ContentGenerator
	if cfg.Gemini.Enabled {
		gen, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		generator = gen
		log.Info("assistant model enabled", zap.String("model", gen.Model()))
	}
	assistant := ai.NewAssistant(generator, jobRepo, appRepo, userRepo, log)

	objectStore, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	authMiddleware := handlers.RequireAuth(userService, cfg.Auth.JWTSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/jobs", func(r chi.Router) {
		handlers.JobRouter(r, jobService, appService, authMiddleware)
	})
	router.Route("/applications", func(r chi.Router) {
		handlers.ApplicationRouter(r, appService, authMiddleware)
	})
	router.Route("/interviews", func(r chi.Router) {
		handlers.InterviewRouter(r, interviewService, authMiddleware)
	})
	router.Route("/assessments", func(r chi.Router) {
		handlers.AssessmentRouter(r, assessmentService, authMiddleware)
	})
	router.Route("/notifications", func(r chi.Router) {
		handlers.NotificationRouter(r, notificationService, authMiddleware)
	})
	router.Route("/assistant", func(r chi.Router) {
		handlers.AssistantRouter(r, assistant, authMiddleware)
	})
	if objectStore != nil {
		router.Route("/documents", func(r chi.Router) {
			handlers.DocumentRouter(r, objectStore, authMiddleware)
		})
	} else {
		log.Warn("object storage not configured, document uploads disabled")
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		log:        log,
	}, nil
}

// newBroker selects the notification broker backend. An empty backend
// disables dispatch; notifications are still persisted.
func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.Notify.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.Notify.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.Notify.PubSub)
		if err != nil {
			return nil, fmt.Errorf("init pubsub: %w", err)
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

// newObjectStorage selects the document storage backend. An empty
// backend disables document uploads.
func newObjectStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return st, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, fmt.Errorf("init gcs: %w", err)
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	_ = s.log.Sync()
	return s.httpServer.Close()
}
