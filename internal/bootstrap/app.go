package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matheuss-dsr/dedicandos/internal/assembly"
	"github.com/matheuss-dsr/dedicandos/internal/enem"
	"github.com/matheuss-dsr/dedicandos/internal/exams"
	"github.com/matheuss-dsr/dedicandos/internal/mail"
	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/render"
	"github.com/matheuss-dsr/dedicandos/internal/shared/config"
	"github.com/matheuss-dsr/dedicandos/internal/shared/server"
	"github.com/matheuss-dsr/dedicandos/internal/shared/storage/db"
	"github.com/matheuss-dsr/dedicandos/internal/users"
)

// App holds shared dependencies wired from config.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Enem       *enem.Client
	Translator questions.Translator
	Assembler  *assembly.Assembler
	Cooldown   assembly.Cooldown
	Renderer   *render.Renderer
	Mailer     mail.Mailer

	ExamsRepo exams.Repo
	UsersRepo users.Repo

	ExamsService *exams.Service
	UsersService *users.Service

	ExamHandler *exams.Handler
	UserHandler *users.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		ExamHandler: app.ExamHandler,
		UserHandler: app.UserHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
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
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	cfg := app.Config

	if app.DB != nil {
		app.ExamsRepo = &exams.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.ExamsRepo = exams.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	app.Enem = enem.NewClient(cfg.EnemBaseURL, cfg.EnemTimeout)
	// Keep the interface nil when translation is disabled; a typed nil
	// would defeat the translator == nil checks downstream.
	if tr := questions.NewHTTPTranslator(cfg.TranslateURL, cfg.TranslateKey); tr != nil {
		app.Translator = tr
	}
	app.Assembler = assembly.New(app.Enem, app.Translator)
	app.Cooldown = assembly.NewMemoryCooldown(cfg.CooldownWindow, nil)
	app.Renderer = render.New(render.NewImageFetcher(0))

	if smtp := mail.NewSMTPMailer(cfg); smtp != nil {
		app.Mailer = smtp
	} else {
		log.Printf("bootstrap: SMTP not configured; mail is logged only")
		app.Mailer = mail.LogMailer{}
	}

	app.ExamsService = exams.NewService(app.ExamsRepo, app.Enem, app.Assembler, app.Cooldown, app.Translator)
	app.UsersService = users.NewService(app.UsersRepo, app.Mailer, cfg.AppURL)

	app.ExamHandler = exams.NewHandler(app.ExamsService, app.Renderer)
	app.UserHandler = users.NewHandler(app.UsersService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
