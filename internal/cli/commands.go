package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/graph"
	"github.com/deepagent/deepagent/internal/server"
	"github.com/deepagent/deepagent/internal/service"
)

const Version = "0.1.0"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "deepagent",
		Short: "DeepAgent - AI-powered financial research",
		Long: `DeepAgent Financial Systems runs multi-agent financial research:
a supervisor agent plans the work, delegates to specialist analysts and
compiles a research report.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newQueryCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

func newQueryCmd(cfg *config.Config) *cobra.Command {
	var quiet bool
	var analysisType string

	cmd := &cobra.Command{
		Use:   "query [QUESTION]",
		Short: "Run one research query",
		Long: `Run a research query through the agent workflow.
Example: deepagent query "Analyze AAPL stock and assess its risk"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			for i, arg := range args {
				if i > 0 {
					query += " "
				}
				query += arg
			}
			return runTypedQuery(cfg, query, analysisType, quiet)
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Print only the final report")
	cmd.Flags().StringVar(&analysisType, "type", "",
		"Analysis type override (stock_analysis, portfolio_analysis, risk_assessment, market_research, general)")
	return cmd
}

func runQuery(cfg *config.Config, query string, quiet bool) error {
	return runTypedQuery(cfg, query, "", quiet)
}

func runTypedQuery(cfg *config.Config, query, analysisType string, quiet bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := service.NewRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if !quiet {
		fmt.Println(Banner(Version))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events chan graph.Event
	done := make(chan struct{})
	if !quiet {
		events = make(chan graph.Event, 64)
		go func() {
			defer close(done)
			for e := range events {
				if line := RenderEvent(e); line != "" {
					fmt.Println(line)
				}
			}
		}()
	} else {
		close(done)
	}

	result, err := runner.RunTyped(ctx, query, analysisType, events)
	<-done
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(result.Report)
	if result.ReportPath != "" {
		fmt.Println(okStyle.Render("Report saved: " + result.ReportPath))
	}
	if !quiet {
		fmt.Println(dimStyle.Render(fmt.Sprintf("session %s · %s · %s",
			result.SessionID, result.AnalysisType, result.Elapsed)))
	}
	return nil
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP development server",
		Long: `Start the HTTP server that accepts research runs as JSON:
POST /runs {"messages":[{"content":"Analyze AAPL","type":"human"}]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			runner, err := service.NewRunner(cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println(Banner(Version))
			srv := server.New(cfg, runner, runner.Store())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "Listen address")
	return cmd
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration status",
		Run: func(cmd *cobra.Command, args []string) {
			status := cfg.Status()
			check := func(ok bool) string {
				if ok {
					return okStyle.Render("configured")
				}
				return errStyle.Render("missing")
			}

			fmt.Println("LLM provider:   ", cfg.LLMProvider, check(status.OpenAIConfigured))
			fmt.Println("Web search:     ", check(status.TavilyConfigured))
			fmt.Println("Tracing:        ", check(status.TracingEnabled))
			fmt.Println("Longport data:  ", check(status.LongportConfigured))
			fmt.Println("Results dir:    ", cfg.ResultsDir)
			fmt.Println("Database:       ", cfg.DBPath)
			fmt.Println("HTTP address:   ", cfg.HTTPAddr)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deepagent %s\n", Version)
		},
	}
}
