package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/dispatch"
	"github.com/MauroHerreraJ/vigia/internal/config"
	"github.com/MauroHerreraJ/vigia/internal/logging"
	"github.com/MauroHerreraJ/vigia/session"
	bboltstore "github.com/MauroHerreraJ/vigia/store/bbolt"
)

var panicCmd = &cobra.Command{
	Use:   "panic",
	Short: "Send a panic event now",
	Long: `Operator tool: dispatches one panic event immediately, skipping the
press-and-hold gesture. The SMS fallback asks for confirmation on the
terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(cfg.Environment)

		st, err := bboltstore.NewFromFile(cfg.DataDir+"/session.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		client := api.New(cfg.Server.BaseURL, api.WithTimeout(cfg.Server.Timeout))
		ctrl := session.New(st, client,
			session.WithLogger(log),
			session.WithLegacyAccess(cfg.Session.AllowLegacyAccessWithoutLicense),
		)
		defer ctrl.Stop()

		state, err := ctrl.Start(cmd.Context())
		if err != nil {
			return err
		}
		if state != session.StateAuthorized {
			return fmt.Errorf("the device is not registered")
		}

		confirm := func(message string) bool {
			fmt.Printf("%s [y/N]: ", message)
			in := bufio.NewScanner(os.Stdin)
			if !in.Scan() {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(in.Text()))
			return answer == "y" || answer == "yes"
		}

		dispatcher := dispatch.NewDispatcher(ctrl, client,
			dispatch.NewComposerMessenger(), confirm,
			dispatch.WithOperatorNumber(cfg.Panic.OperatorNumber),
			dispatch.WithDispatchLogger(log),
		)

		outcome, err := dispatcher.Dispatch(cmd.Context(), dispatch.EventAlarm)
		if err != nil {
			return fmt.Errorf("panic dispatch failed (%s): %w", outcome, err)
		}
		fmt.Printf("Panic dispatch result: %s\n", outcome)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(panicCmd)
}
