package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Maxservais/chat/internal/chat"
	"github.com/Maxservais/chat/internal/config"
	"github.com/Maxservais/chat/internal/server"
	"github.com/Maxservais/chat/internal/session"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the confchat HTTP server",
	Long:  `Starts the confchat server with the chat websocket, the schedule REST API, and calendar export.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		provider, err := createProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		source, gen, err := createScheduleSource(cfg)
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := session.NewStore(database)
		engine := createEngine(cfg, provider, store)
		controller := chat.New(store, session.NewRegistry(), provider, engine,
			chat.NewTools(source, gen), cfg.Model, cfg.MaxToolRounds)
		engine.SetSinks(controller.OnTaskProgress, controller.OnTaskComplete)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllCORS,
		}, controller, source, gen)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "confchat server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", provider.Name(), cfg.Model)
		fmt.Fprintf(os.Stderr, "  Schedule: %s\n", cfg.Schedule.SourceURL)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "override the configured port")
	rootCmd.AddCommand(serverCmd)
}
