package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sushihentaime/quill/internal/authservice"
	"github.com/sushihentaime/quill/internal/blogservice"
	"github.com/sushihentaime/quill/internal/common"
	"github.com/sushihentaime/quill/internal/mailservice"
	"github.com/sushihentaime/quill/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	authService *authservice.AuthService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
	limiter     common.Limiter
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func main() {
	configPath := flag.String("config", ".env", "path to the .env configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	db, err := common.NewDB(ctx, cfg.databaseURL(), common.DefaultPool)
	cancel()
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	issuer, err := authservice.NewIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Error("failed to configure tokens", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		blogService: blogservice.NewBlogService(db, logger),
	}

	// user events and welcome mail only run when a broker is configured
	var producer common.MessageProducer
	if cfg.RabbitMQ.Host != "" {
		broker, err := common.NewMessageBroker(cfg.rabbitURL())
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		if err := broker.DeclareUserTopology(); err != nil {
			logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		app.broker = broker
		producer = broker

		if cfg.Mail.Host != "" {
			app.mailService = mailservice.NewMailService(broker, mailservice.MailConfig{
				Host:     cfg.Mail.Host,
				Port:     cfg.Mail.Port,
				Username: cfg.Mail.User,
				Password: cfg.Mail.Password,
				Sender:   cfg.Mail.Sender,
			}, logger)

			if err := app.mailService.SendWelcomeEmail(); err != nil {
				logger.Error("failed to start the welcome email consumer", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	}

	app.userService = userservice.NewUserService(db, producer, logger)

	app.authService, err = authservice.NewAuthService(app.userService, issuer, cfg.Auth.DemoEmail, cfg.Auth.DemoPassword)
	if err != nil {
		logger.Error("failed to configure login", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.RateLimit.Enabled {
		app.limiter = newLimiter(cfg, logger)
	}

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLimiter shares counters through Redis when REDIS_ADDR is set and keeps
// them in process otherwise.
func newLimiter(cfg *Config, logger *slog.Logger) common.Limiter {
	if cfg.Redis.Addr == "" {
		return common.NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 3*time.Minute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})

	window := time.Second
	if cfg.RateLimit.RPS > 0 {
		window = time.Duration(float64(cfg.RateLimit.Burst) / cfg.RateLimit.RPS * float64(time.Second))
	}

	logger.Info("using redis rate limiter", slog.String("addr", cfg.Redis.Addr), slog.Duration("window", window))

	return common.NewRedisLimiter(client, "", cfg.RateLimit.Burst, window)
}
