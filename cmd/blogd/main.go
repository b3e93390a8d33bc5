package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-blog"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *AppConfig
	bunDB  *bun.DB
	auth   blog.Authenticator
	repo   blog.RepositoryManager
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("blogd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(cfg))
		fmt.Println("============")
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence setup failed", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := Seed(ctx, app); err != nil {
			lgr.Error("seed failed", "error", err)
			os.Exit(1)
		}
		lgr.Info("seed complete")
		return
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("http setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := app.srv.Listen(cfg.HTTPAddr); err != nil {
			lgr.Error("server stopped", "error", err)
		}
	}()

	lgr.Info("listening", "addr", cfg.HTTPAddr)

	WaitExitSignal()

	if err := app.srv.ShutdownWithTimeout(5 * time.Second); err != nil {
		lgr.Error("shutdown error", "error", err)
	}

	if err := app.bunDB.Close(); err != nil {
		lgr.Error("db close error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := createSchema(ctx, db); err != nil {
		return err
	}

	repo := blog.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = repo

	return nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*blog.User)(nil),
		(*blog.Category)(nil),
		(*blog.Post)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	provider := blog.NewUserProvider(app.repo.Users()).
		WithLogger(app.GetLogger("auth:prv"))

	authenticator := blog.NewAuthenticator(provider, app.config).
		WithLogger(app.GetLogger("auth:authn"))

	app.auth = authenticator

	guard := blog.NewGuard(authenticator, app.config).
		WithLogger(app.GetLogger("auth:guard"))

	controller := blog.NewAPIController(
		blog.WithControllerRepo(app.repo),
		blog.WithControllerAuthenticator(authenticator),
		blog.WithControllerConfig(app.config),
		blog.WithControllerLogger(app.GetLogger("api")),
		blog.WithControllerDebug(app.config.Debug),
	)

	srv := fiber.New(fiber.Config{
		AppName:               "blogd",
		DisableStartupMessage: !app.config.Debug,
	})

	blog.RegisterAPIRoutes(srv, controller, guard)

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
