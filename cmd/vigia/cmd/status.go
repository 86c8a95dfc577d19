package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/internal/config"
	"github.com/MauroHerreraJ/vigia/store"
	bboltstore "github.com/MauroHerreraJ/vigia/store/bbolt"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the locally stored session record",
	Long: `Read-only diagnostic of the local session record. No network call is
made; this shows what the device has cached, not what the server thinks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := bboltstore.NewFromFile(cfg.DataDir+"/session.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		account, hasAccount, _ := st.Get(cmd.Context(), store.KeyAccountNumber)
		if !hasAccount {
			fmt.Println("No session record: the device is not registered.")
			return nil
		}

		fmt.Printf("Account number:   %s\n", account)
		printKey(cmd, st, "Neighborhood:    ", store.KeyNeighborhoodName)
		printKey(cmd, st, "Code:            ", store.KeyNeighborhoodCode)
		printKey(cmd, st, "Registered name: ", store.KeyFullName)
		printKey(cmd, st, "Property:        ", store.KeyPropertyReference)
		printKey(cmd, st, "Contact phone:   ", store.KeyNeighborhoodPhone)

		if _, ok, _ := st.Get(cmd.Context(), store.KeyLicenseCode); ok {
			fmt.Println("Licence:          present (validated periodically while the agent runs)")
		} else {
			fmt.Println("Licence:          absent (legacy registration)")
		}
		if _, ok, _ := st.Get(cmd.Context(), store.KeyAccessToken); ok {
			fmt.Println("Credentials:      present")
		} else {
			fmt.Println("Credentials:      missing")
		}
		return nil
	},
}

func printKey(cmd *cobra.Command, st store.Store, label, key string) {
	if value, ok, _ := st.Get(cmd.Context(), key); ok {
		fmt.Printf("%s%s\n", label, value)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
