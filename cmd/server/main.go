package main

import (
	"context"
	"log/slog"
	"os"

	"venturevet/internal/auth"
	"venturevet/internal/config"
	"venturevet/internal/guard"
	"venturevet/internal/httpserver"
	"venturevet/internal/idea"
	"venturevet/internal/logger"
	"venturevet/internal/redirect"
	"venturevet/internal/session"
	"venturevet/internal/storage/postgres"
	storageredis "venturevet/internal/storage/redis"
	transport "venturevet/internal/transport/http"
)

type appConfig struct {
	BaseURL     string `env:"APP_BASE_URL,required"`
	LandingPath string `env:"APP_LANDING_PATH" envDefault:"/dashboard"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg      appConfig
		httpCfg     httpserver.Config
		pgCfg       postgres.Config
		redisCfg    storageredis.Config
		sessionCfg  session.Config
		googleCfg   auth.GoogleConfig
		analyzerCfg idea.AnalyzerConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&analyzerCfg)

	log := newLogger(appCfg.LogLevel)

	pool, err := postgres.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	redisClient, err := storageredis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	resolver, err := redirect.New(appCfg.BaseURL, appCfg.LandingPath)
	if err != nil {
		return err
	}

	issuer, err := session.NewIssuer(sessionCfg.Secret, sessionCfg.MaxAge)
	if err != nil {
		return err
	}
	cookies := session.NewCookieTransport(sessionCfg.CookieName, sessionCfg.CookieSecure)

	authRepo := postgres.NewAuthRepository(pool)
	linker := auth.NewLinker(authRepo, auth.WithLinkerLogger(log))
	passwords := auth.NewPasswordService(authRepo, auth.WithPasswordLogger(log))
	googleOAuth := auth.NewOAuthService(
		auth.NewRedisStateStore(redisClient),
		auth.NewGoogleAdapter(googleCfg),
		linker,
		auth.WithOAuthLogger(log),
		auth.WithStateTTL(googleCfg.StateTTL),
		auth.WithVerifiedOnly(googleCfg.VerifiedOnly),
	)
	authService := auth.NewService(passwords, googleOAuth)

	ideaService := idea.NewService(
		postgres.NewIdeaRepository(pool),
		idea.NewHTTPAnalyzer(analyzerCfg),
		idea.WithServiceLogger(log),
	)

	routeGuard := guard.New(issuer, cookies, resolver, guard.WithLogger(log))

	router := transport.NewRouter(transport.RouterDeps{
		Guard: routeGuard,
		Auth:  transport.NewAuthHandler(authService, authRepo, issuer, cookies, resolver, log),
		Ideas: transport.NewIdeaHandler(ideaService, log),
	})

	return httpserver.New(httpCfg, log).Run(ctx, router)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
