package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "confchat",
	Short: "Conversational conference schedule assistant",
	Long: `Confchat is a chat assistant for conference attendees. It answers
schedule questions through an LLM with tool access to the live event
catalogue, analyzes an attendee's public posts in the background to
personalize recommendations, and exports selections as calendar files.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".confchat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
