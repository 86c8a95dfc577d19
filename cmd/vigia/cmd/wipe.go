package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/internal/config"
	"github.com/MauroHerreraJ/vigia/internal/logging"
	"github.com/MauroHerreraJ/vigia/internal/passcode"
	"github.com/MauroHerreraJ/vigia/session"
	bboltstore "github.com/MauroHerreraJ/vigia/store/bbolt"
)

var wipePasscode string

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Erase all session data on this device",
	Long: `Removes every session record key. The device drops back to the
unregistered state; this is the maintenance operation behind the
passcode-protected erase option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.New(cfg.Environment)

		if hash := cfg.Maintenance.PasscodeHash; hash != "" {
			if !passcode.Verify(hash, wipePasscode) {
				return fmt.Errorf("incorrect passcode")
			}
		}

		st, err := bboltstore.NewFromFile(cfg.DataDir+"/session.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		client := api.New(cfg.Server.BaseURL, api.WithTimeout(cfg.Server.Timeout))
		ctrl := session.New(st, client, session.WithLogger(log))
		defer ctrl.Stop()

		ctrl.Wipe(cmd.Context())
		fmt.Println("All session data erased.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wipeCmd)
	wipeCmd.Flags().StringVar(&wipePasscode, "passcode", "", "Maintenance passcode")
}
