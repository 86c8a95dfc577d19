package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MauroHerreraJ/vigia/internal/passcode"
)

var passcodeCmd = &cobra.Command{
	Use:   "passcode <code>",
	Short: "Hash a maintenance passcode for the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := passcode.Hash(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passcodeCmd)
}
