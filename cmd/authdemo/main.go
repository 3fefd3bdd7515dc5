package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running demo: %s\n", err)
	}
	log.Printf("Demo finished\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	storage, err := tokenstore.NewFileStorage(c.GetStorageFolder())
	if err != nil {
		return fmt.Errorf("token storage: %w", err)
	}
	store := tokenstore.New(storage, tokenstore.WithLogger(logger))
	store.Load()

	navigator := &consoleNavigator{log: logger, loginPath: c.GetLoginPath()}
	api, err := gateway.New(c.GetAPIBaseURL(), store,
		gateway.WithNavigator(navigator),
		gateway.WithTimeout(c.GetRequestTimeout()),
		gateway.WithLogger(logger),
		gateway.WithMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	sessions, err := session.New(store, api,
		session.WithNavigator(navigator),
		session.WithBypassConfig(c),
		session.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !sessions.IsAuthenticated() {
		if err := login(ctx, sessions); err != nil {
			return err
		}
	}

	page := config.GetEnv("DEMO_PAGE", c.GetDefaultPage())
	g, err := guard.New(page, sessions, store, &menuClient{api: api}, navigator, c,
		guard.WithAlerter(&consoleAlerter{log: logger}),
		guard.WithRenderer(&consoleRenderer{log: logger}),
		guard.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("guard: %w", err)
	}
	defer g.Close()

	g.Mount()
	state := waitForSettledState(ctx, g)

	status := sessions.TokenStatus()
	logger.Info().
		Str("page", page).
		Str("state", string(state)).
		Bool("authenticated", sessions.IsAuthenticated()).
		Str("tokenStatus", string(status.Status)).
		Int("expiresInMinutes", status.ExpiresInMinutes).
		Msg("authorization result")
	return nil
}

func login(ctx context.Context, sessions *session.Controller) error {
	credentials := session.Credentials{
		Username: config.GetEnv("DEMO_USERNAME", ""),
		Password: config.GetEnv("DEMO_PASSWORD", ""),
		TenantID: config.GetEnv("DEMO_TENANT", ""),
	}
	if credentials.Username == "" {
		return errors.New("not logged in and DEMO_USERNAME is not set")
	}
	return sessions.Login(ctx, credentials)
}

// waitForSettledState polls until the guard leaves its loading states or the
// context is cancelled.
func waitForSettledState(ctx context.Context, g *guard.Guard) guard.State {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		state := g.State()
		if !state.Loading() {
			return state
		}
		select {
		case <-ctx.Done():
			return g.State()
		case <-ticker.C:
		}
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
