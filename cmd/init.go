package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Maxservais/chat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize confchat configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure confchat and generates a .confchat.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
