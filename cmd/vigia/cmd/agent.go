package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/dispatch"
	"github.com/MauroHerreraJ/vigia/internal/config"
	"github.com/MauroHerreraJ/vigia/internal/logging"
	"github.com/MauroHerreraJ/vigia/internal/passcode"
	"github.com/MauroHerreraJ/vigia/session"
	bboltstore "github.com/MauroHerreraJ/vigia/store/bbolt"
	"github.com/MauroHerreraJ/vigia/web"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the device agent",
	Long: `Runs the session lifecycle controller, the panic dispatcher and the
local control surface the UI talks to. The startup authorization check
completes before the control surface starts serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(cfg.Environment)

		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		st, err := bboltstore.NewFromFile(cfg.DataDir+"/session.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		client := api.New(cfg.Server.BaseURL, api.WithTimeout(cfg.Server.Timeout))

		ctrl := session.New(st, client,
			session.WithLogger(log),
			session.WithRecheckInterval(cfg.Session.RecheckInterval),
			session.WithLegacyAccess(cfg.Session.AllowLegacyAccessWithoutLicense),
		)
		defer ctrl.Stop()

		// Hard barrier: no authorized surface is reachable until this resolves.
		state, err := ctrl.Start(cmd.Context())
		if err != nil {
			return fmt.Errorf("startup authorization check failed: %w", err)
		}
		log.Info().Str("state", state.String()).Msg("session resolved")

		// A delivered panic event ends the app session on purpose.
		var endOnce sync.Once
		sessionEnded := make(chan struct{})
		terminate := func() {
			endOnce.Do(func() { close(sessionEnded) })
		}

		dispatcher := dispatch.NewDispatcher(ctrl, client,
			dispatch.NewComposerMessenger(),
			// The composer is the confirmation surface on this platform:
			// nothing leaves the device until the user presses send.
			func(string) bool { return true },
			dispatch.WithOperatorNumber(cfg.Panic.OperatorNumber),
			dispatch.WithTerminate(terminate),
			dispatch.WithDispatchLogger(log),
		)

		hold := dispatch.NewHoldTrigger(cfg.Panic.HoldDuration, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			outcome, err := dispatcher.Dispatch(ctx, dispatch.EventAlarm)
			if err != nil {
				log.Error().Err(err).Str("outcome", outcome.String()).Msg("panic dispatch finished")
				return
			}
			log.Info().Str("outcome", outcome.String()).Msg("panic dispatch finished")
		})

		controlOpts := []web.Option{
			web.WithLogger(log),
			web.WithAllowedOrigins(cfg.Control.AllowedOrigins),
		}
		if hash := cfg.Maintenance.PasscodeHash; hash != "" {
			controlOpts = append(controlOpts, web.WithWipeGuard(func(code string) bool {
				return passcode.Verify(hash, code)
			}))
		}
		control := web.New(ctrl, client, hold, controlOpts...)

		r := chi.NewRouter()
		r.Use(chimiddleware.Recoverer)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		r.Mount("/", control.Router())

		server := &http.Server{
			Addr:              cfg.Control.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("control surface failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		log.Info().Str("addr", cfg.Control.ListenAddr).Msg("control surface listening")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		shutdown := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("control surface shutdown failed: %w", err)
			}
			return nil
		}

		select {
		case sig := <-quit:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			return shutdown()
		case <-sessionEnded:
			log.Info().Msg("panic event delivered, ending app session")
			return shutdown()
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
