package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/tastythames/router-keepalive/internal/config"
	"github.com/tastythames/router-keepalive/internal/metrics"
	"github.com/tastythames/router-keepalive/internal/profile"
	"github.com/tastythames/router-keepalive/internal/retry"
	"github.com/tastythames/router-keepalive/internal/routerclient"
	"github.com/tastythames/router-keepalive/internal/runner"
	"github.com/tastythames/router-keepalive/internal/schedule"
	"github.com/tastythames/router-keepalive/internal/status"
)

func getenv(k, fb string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fb
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal("startup failed", "err", err)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Defaults()

	cmd := &cobra.Command{
		Use:           "router-keepalive",
		Short:         "Periodically log into a router's web UI on a schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "host", getenv("ROUTER_HOST", cfg.BaseURL), "router base URL, with scheme")
	f.StringVar(&cfg.Username, "username", getenv("ROUTER_USERNAME", cfg.Username), "router username")
	f.StringVar(&cfg.Password, "password", cfg.Password, "router password (env: "+config.PasswordEnvVar+")")
	f.StringVar(&cfg.LoginToken, "login-token", cfg.LoginToken, "login token form value")
	f.StringVar(&cfg.Frashnum, "frashnum", cfg.Frashnum, "frashnum form value")
	f.StringVar(&cfg.Schedule, "schedule", getenv("ROUTER_SCHEDULE", cfg.Schedule), "cron expression or fixed interval (local time)")
	f.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retries per tick for transient failures")
	f.DurationVar(&cfg.BackoffBase, "backoff-base", cfg.BackoffBase, "first retry backoff delay")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-attempt request timeout")
	f.StringVar(&cfg.ProfileName, "profile", cfg.ProfileName, "built-in firmware profile name")
	f.StringVar(&cfg.ProfileFile, "profile-file", "", "YAML firmware profile, overrides --profile")
	f.StringVar(&cfg.Listen, "listen", getenv("KEEPALIVE_LISTEN", ""), "status/metrics listen address, empty disables")
	f.BoolVar(&cfg.RunNow, "run-now", false, "run one tick immediately on start")
	f.BoolVar(&cfg.FollowUp, "follow-up", false, "dispatch the profile's post-login action (e.g. reboot) after a successful login")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(ctx context.Context, cfg config.Settings) error {
	log.SetReportTimestamp(true)
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dev, err := loadProfile(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	spec, err := schedule.Parse(cfg.Schedule, time.Local)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// a timeout at or above the interval would let attempts pile up behind
	// the scheduler
	if iv, ok := spec.FixedInterval(); ok && cfg.Timeout >= iv {
		return fmt.Errorf("config: timeout %s must be shorter than interval %s", cfg.Timeout, iv)
	}

	creds, err := cfg.Credentials()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	client, err := routerclient.New(routerclient.Options{Device: dev, Timeout: cfg.Timeout})
	if err != nil {
		return err
	}

	store := status.NewStore()
	r := runner.New(runner.Options{
		Credentials: creds,
		Schedule:    spec,
		Client:      client,
		Retry:       retry.Policy{MaxRetries: cfg.MaxRetries, Base: cfg.BackoffBase},
		Store:       store,
		RunNow:      cfg.RunNow,
		FollowUp:    cfg.FollowUp,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Listen != "" {
		srv = startStatusServer(cfg.Listen, store)
	}

	log.Info("starting",
		"host", creds.BaseURL.String(),
		"username", creds.Username,
		"profile", dev.Name(),
		"schedule", spec.String(),
		"tz", spec.Location().String(),
	)
	r.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return nil
}

func loadProfile(cfg config.Settings) (routerclient.Device, error) {
	if cfg.ProfileFile != "" {
		return profile.Load(cfg.ProfileFile)
	}
	return profile.Builtin(cfg.ProfileName)
}

func startStatusServer(listen string, store *status.Store) *http.Server {
	r := metrics.NewRenderer(store)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Write(w)
	})

	srv := &http.Server{
		Addr:    listen,
		Handler: mux,
	}

	go func() {
		log.Info("status server listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("status server", "err", err)
		}
	}()

	return srv
}
