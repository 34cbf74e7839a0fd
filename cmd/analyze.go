package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Maxservais/chat/internal/config"
	"github.com/Maxservais/chat/internal/intent"
	"github.com/Maxservais/chat/internal/progress"
	"github.com/Maxservais/chat/internal/session"
	"github.com/Maxservais/chat/internal/tasks"
)

var analyzeSession string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <handle>",
	Short: "Run a profile analysis from the command line",
	Long: `Fetches the given handle's public posts, derives an interest profile,
and stores it for the session. The same pipeline runs behind the chat
when an attendee shares their handle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := intent.NormalizeHandle(args[0])
		if subject == "" {
			return fmt.Errorf("invalid handle %q", args[0])
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		provider, err := createProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := session.NewStore(database)
		engine := createEngine(cfg, provider, store)

		reporter := progress.NewReporter()
		engine.SetSinks(func(_ string, p tasks.Progress) {
			reporter.Update(p)
		}, nil)

		reporter.Start(subject)
		result := engine.StartProfileAnalysis(analyzeSession, subject).Wait()
		reporter.Finish()

		if result.Failure != nil {
			return fmt.Errorf("analysis failed: %w", result.Failure)
		}

		p := result.Profile
		fmt.Printf("Profile for @%s (%d posts analyzed)\n", p.Subject, p.ItemsAnalyzed)
		fmt.Printf("  Topics: %s\n", strings.Join(p.Topics, ", "))
		if p.Summary != "" {
			fmt.Printf("  Summary: %s\n", p.Summary)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSession, "session", "cli", "session key to store the profile under")
	rootCmd.AddCommand(analyzeCmd)
}
