package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/internal/config"
	"github.com/MauroHerreraJ/vigia/internal/logging"
	"github.com/MauroHerreraJ/vigia/session"
	bboltstore "github.com/MauroHerreraJ/vigia/store/bbolt"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this device against a neighborhood",
	Long: `Two-step registration: the neighborhood code and account number are
validated first, then the personal data is submitted and the issued
credentials are persisted.`,
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
		in := bufio.NewScanner(os.Stdin)

		code := prompt(in, "Neighborhood code")
		account := prompt(in, "Account number")
		if code == "" || account == "" {
			return fmt.Errorf("neighborhood code and account number are required")
		}

		check, err := client.ValidateAccountNumber(cmd.Context(), code, account)
		if err != nil {
			return registerError(err)
		}
		if !check.Exists {
			return fmt.Errorf("the account number does not exist in this neighborhood")
		}
		if !check.Available {
			return fmt.Errorf("this account number is already assigned to another device")
		}

		if n, err := client.NeighborhoodConfig(cmd.Context(), code); err == nil && n.Name != "" {
			fmt.Printf("Neighborhood: %s\n", n.Name)
		}

		fullName := prompt(in, "Full name")
		block := prompt(in, "Block (manzana)")
		lot := prompt(in, "Lot (lote)")
		phoneNumber := prompt(in, "Phone number")
		if fullName == "" || block == "" || lot == "" || phoneNumber == "" {
			return fmt.Errorf("all personal fields are required")
		}

		req := api.RegisterRequest{
			NeighborhoodCode:  code,
			AccountNumber:     account,
			FullName:          fullName,
			PropertyReference: fmt.Sprintf("Manzana %s - Lote %s", block, lot),
			PhoneNumber:       phoneNumber,
		}
		reg, err := client.Register(cmd.Context(), req)
		if err != nil {
			return registerError(err)
		}

		ctrl := session.New(st, client, session.WithLogger(log))
		defer ctrl.Stop()
		if err := ctrl.CompleteRegistration(cmd.Context(), req, reg); err != nil {
			return fmt.Errorf("registration succeeded but could not be saved: %w", err)
		}

		fmt.Printf("Welcome, %s. The device is now registered.\n", fullName)
		return nil
	},
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// registerError maps API failures to actionable messages; registration cannot
// proceed without server confirmation.
func registerError(err error) error {
	switch {
	case api.IsUnreachable(err):
		return fmt.Errorf("could not reach the server; check your internet connection")
	case api.IsRejected(err):
		return fmt.Errorf("the server rejected the request; check the information entered")
	default:
		return fmt.Errorf("the server returned an unexpected response; try again in a moment")
	}
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
