package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusdesk/internal/config"
	"focusdesk/internal/google"
	"focusdesk/internal/handlers"
	"focusdesk/internal/logger"
	"focusdesk/internal/middleware"
	sessioninmem "focusdesk/internal/repository/session/inmemory"
	sessionpg "focusdesk/internal/repository/session/postgres"
	taskinmem "focusdesk/internal/repository/task/inmemory"
	taskpg "focusdesk/internal/repository/task/postgres"
	userinmem "focusdesk/internal/repository/user/inmemory"
	userpg "focusdesk/internal/repository/user/postgres"
	"focusdesk/internal/service"
	"focusdesk/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.SyncWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	var taskRepo service.TaskRepository
	var userRepo service.UserRepository
	var sessionRepo service.SessionRepository

	switch a.config.Repository.Type {
	case "postgres":
		pool, err := a.connectPostgres(ctx)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Repository: Закрытие всех соединений PostgreSQL")
			pool.Close()
		})

		if err := a.applyMigrations(); err != nil {
			return err
		}

		taskRepo = taskpg.NewWithPool(pool)
		userRepo = userpg.NewWithPool(pool)
		sessionRepo = sessionpg.NewWithPool(pool)

	case "inmemory":
		taskRepo = taskinmem.NewTaskStorage()
		userRepo = userinmem.NewUserStorage()
		sessionRepo = sessioninmem.NewSessionStorage()

	default:
		return fmt.Errorf("неизвестный тип репозитория: %s", a.config.Repository.Type)
	}

	googleClient := google.NewClient(a.config.Google, a.config.Sync.MaxEvents)

	taskService := service.NewTaskService(taskRepo)
	authService := service.NewAuthService(userRepo, sessionRepo, a.config.Session.TTL)
	syncService := service.NewSyncService(taskRepo, userRepo, googleClient)

	a.worker = worker.NewSyncWorker(userRepo, syncService, &a.config.Sync.Interval)

	taskHandler := handlers.NewTaskHandler(taskService)
	authHandler := handlers.NewAuthHandler(authService, googleClient,
		a.config.Google.FrontendURL, a.config.Session.TTL, a.config.Session.Secure)
	syncHandler := handlers.NewSyncHandler(syncService)

	a.router = a.buildRouter(&taskHandler, &authHandler, &syncHandler, authService)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) buildRouter(taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler, syncHandler *handlers.SyncHandler, authService *service.AuthService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Google.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", authHandler.GoogleLogin)      // GET /api/auth/google
			r.Get("/callback", authHandler.GoogleCallback) // GET /api/auth/callback
			r.Get("/status", authHandler.Status)           // GET /api/auth/status
			r.Post("/logout", authHandler.Logout)          // POST /api/auth/logout
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetActiveTasks) // GET /api/tasks
				r.Post("/", taskHandler.PostTask)      // POST /api/tasks

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", taskHandler.UpdateTaskByID)    // PUT /api/tasks/{id}
					r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /api/tasks/{id}
				})
			})

			r.Post("/sync", syncHandler.TriggerSync) // POST /api/sync
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

func (a *App) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("загрузка конфига БД: %w", err)
	}

	if a.config.Database.MaxConnections > 0 {
		poolConfig.MaxConns = int32(a.config.Database.MaxConnections)
	}
	if a.config.Database.MinConnections > 0 {
		poolConfig.MinConns = int32(a.config.Database.MinConnections)
	}
	if a.config.Database.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = a.config.Database.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return pool, nil
}

func (a *App) applyMigrations() error {
	m, err := migrate.New("file://"+a.config.Database.MigrationsPath, a.config.Database.URL)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.worker.Start(ctx)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("Остановка HTTP сервера...")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка остановки сервера", err)
		}
	}()

	logger.Info("Server started")
	err := a.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("запуск сервера: %w", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
