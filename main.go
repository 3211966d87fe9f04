package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ellavondegurechaff/gogift/gifthouse"
	"github.com/ellavondegurechaff/gogift/gifthouse/bots"
	"github.com/ellavondegurechaff/gogift/gifthouse/database"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/ellavondegurechaff/gogift/gifthouse/engine"
	"github.com/ellavondegurechaff/gogift/gifthouse/logger"
	"github.com/ellavondegurechaff/gogift/gifthouse/migration"
	"github.com/ellavondegurechaff/gogift/gifthouse/notifier"
	"github.com/ellavondegurechaff/gogift/gifthouse/services"
	"github.com/ellavondegurechaff/gogift/gifthouse/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	shouldMigrate := flag.Bool("migrate", false, "import the legacy mongo deployment before starting")
	shouldSeedBots := flag.Bool("seed-bots", false, "provision synthetic bidder accounts on startup")
	runBots := flag.String("run-bots", "", "auction id to drive with synthetic bidders")
	flag.Parse()

	customHandler := logger.NewHandler("GoGift")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting GoGift auction host",
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := gifthouse.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	app := gifthouse.New(*cfg, version, commit)
	app.DB = db
	app.AuctionRepo = repositories.NewAuctionRepository(db.BunDB())
	app.UserRepo = repositories.NewUserRepository(db.BunDB())
	defer app.Close()

	if *shouldMigrate {
		migrator, err := migration.NewMigrator(ctx, db.BunDB(), cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			slog.Error("Failed to connect to legacy mongo", slog.Any("error", err))
			os.Exit(-1)
		}
		if err := migrator.Run(ctx); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		if err := migrator.Close(ctx); err != nil {
			slog.Warn("Failed to disconnect from legacy mongo", slog.Any("error", err))
		}
	}

	if cfg.Spaces.Key != "" {
		spaces, err := services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.GiftRoot,
		)
		if err != nil {
			slog.Error("Failed to initialize spaces service", slog.Any("error", err))
			os.Exit(-1)
		}
		app.SpacesService = spaces
	}

	// Events fan out to the log, the SSE hub, and (when configured) the
	// Telegram channel.
	hub := web.NewHub()
	sinks := engine.MultiSink{engine.LogSink{}, hub}
	if cfg.Telegram.Enabled {
		tg, err := notifier.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChannelID)
		if err != nil {
			slog.Error("Failed to initialize telegram notifier", slog.Any("error", err))
			os.Exit(-1)
		}
		sinks = append(sinks, tg)
		slog.Info("Telegram announcements enabled",
			slog.Int64("channel_id", cfg.Telegram.ChannelID))
	}

	app.Registry = engine.NewRegistry(app.AuctionRepo, app.UserRepo, sinks)

	if err := app.Registry.Recover(ctx); err != nil {
		slog.Error("Failed to recover active auctions", slog.Any("error", err))
		os.Exit(-1)
	}

	if *shouldSeedBots {
		seeder := bots.NewSeeder(app.UserRepo)
		if err := seeder.Seed(ctx, cfg.Bots.Count, cfg.Bots.Balance); err != nil {
			slog.Error("Failed to seed bots", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	if *runBots != "" {
		e, ok := app.Registry.Get(*runBots)
		if !ok {
			slog.Error("Cannot run bots: auction not registered",
				slog.String("auction_id", *runBots))
			os.Exit(-1)
		}
		interval := time.Duration(cfg.Bots.IntervalMs) * time.Millisecond
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		runner := bots.NewRunner(app.UserRepo)
		go func() {
			if err := runner.Run(context.Background(), e, interval); err != nil {
				logger.LogError("Bot runner stopped", err, "auction_id", e.ID())
			}
		}()
	}

	janitor := cron.New()
	if _, err := janitor.AddFunc("@every 1m", app.Registry.Sweep); err != nil {
		slog.Error("Failed to schedule registry sweep", slog.Any("error", err))
		os.Exit(-1)
	}
	janitor.Start()
	defer janitor.Stop()

	server := web.NewServer(app.Registry, app.AuctionRepo, app.UserRepo, hub, app.SpacesService, cfg.Web.CORSOrigins)
	go func() {
		if err := server.Listen(cfg.Web.Addr); err != nil {
			slog.Error("Web server stopped", slog.Any("error", err))
			os.Exit(-1)
		}
	}()

	logger.LogSystem("GoGift is running", slog.String("addr", cfg.Web.Addr))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	slog.Info("Shutting down...")
	if err := server.Shutdown(); err != nil {
		slog.Error("Failed to stop web server", slog.Any("error", err))
	}
}
