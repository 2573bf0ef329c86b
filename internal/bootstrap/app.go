package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/engine"
	"retail360-backend/internal/services/health"
	"retail360-backend/internal/shared/auth"
	"retail360-backend/internal/shared/config"
	"retail360-backend/internal/shared/server"
	"retail360-backend/internal/shared/storage/db"
	"retail360-backend/internal/shared/storage/object"
	localstore "retail360-backend/internal/shared/storage/object/local"
	"retail360-backend/internal/uploads"
	"retail360-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Spool         object.ObjectStore
	Signer        *auth.Signer
	UsersRepo     users.Repo
	Ledger        uploads.Ledger
	EngineClient  *engine.Client
	UsersService  *users.Service
	UploadService *uploads.Service
	UserHandler   *users.Handler
	UploadHandler *uploads.Handler
	EngineHandler *engine.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	// Refuse to start without a signing secret; config only supplies the
	// dev placeholder for dev-like envs.
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	signer, err := auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}

	engineClient, err := engine.NewClient(cfg.EngineURL, cfg.EngineTimeout)
	if err != nil {
		return nil, fmt.Errorf("engine client: %w", err)
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Spool:        localstore.New(cfg.SpoolDir),
		Signer:       signer,
		EngineClient: engineClient,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Signer:        app.Signer,
		UserHandler:   app.UserHandler,
		UploadHandler: app.UploadHandler,
		EngineHandler: app.EngineHandler,
		Health:        health.NewService(),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	var userRepo users.Repo
	var ledger uploads.Ledger
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		ledger = &uploads.PGLedger{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		ledger = uploads.NewMemoryLedger()
	}

	userSvc := users.NewService(userRepo, app.Signer)
	uploadSvc := uploads.NewService(ledger, app.Spool, app.EngineClient, userRepo)

	app.UsersRepo = userRepo
	app.Ledger = ledger
	app.UsersService = userSvc
	app.UploadService = uploadSvc
	app.UserHandler = users.NewHandler(userSvc, uploadHistoryAdapter{svc: uploadSvc})
	app.UploadHandler = uploads.NewHandler(uploadSvc)
	app.EngineHandler = engine.NewHandler(app.EngineClient)
}

func isDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// uploadHistoryAdapter projects ledger entries for the profile view without
// making users import uploads.
type uploadHistoryAdapter struct {
	svc *uploads.Service
}

func (a uploadHistoryAdapter) ListForUser(ctx context.Context, userID string) ([]users.UploadRecord, error) {
	list, err := a.svc.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]users.UploadRecord, 0, len(list))
	for _, rec := range list {
		out = append(out, users.UploadRecord{
			ID:        rec.ID,
			Filename:  rec.Filename,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}
