package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/storage/sqlite"
)

const (
	menuQuery   = "Run a research query"
	menuDemo    = "Run a demo scenario"
	menuHistory = "Show recent sessions"
	menuConfig  = "Show configuration"
	menuExit    = "Exit"
)

var demoScenarios = []struct {
	label string
	query string
}{
	{"Stock analysis: Apple", "Analyze AAPL stock: price trend, fundamentals and recent news"},
	{"Portfolio review: AAPL/MSFT/GOOGL", "Analyze a portfolio of AAPL, MSFT and GOOGL with equal weights"},
	{"Risk assessment: Tesla", "Assess the risk of holding TSLA against the S&P 500"},
	{"Market research: current conditions", "What are the current market conditions and sector trends?"},
}

// runInteractiveMode drives the menu-based CLI session.
func runInteractiveMode(cfg *config.Config) error {
	fmt.Println(Banner(Version))

	if err := cfg.Validate(); err != nil {
		fmt.Println(errStyle.Render("Configuration problem: " + err.Error()))
		fmt.Println(dimStyle.Render("Set the required keys in your environment or .env file."))
		return err
	}

	for {
		var choice string
		prompt := &survey.Select{
			Message: "What would you like to do?",
			Options: []string{menuQuery, menuDemo, menuHistory, menuConfig, menuExit},
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			return err
		}

		switch choice {
		case menuQuery:
			query, err := promptForQuery()
			if err != nil {
				return err
			}
			if err := runQuery(cfg, query, false); err != nil {
				fmt.Println(errStyle.Render("Run failed: " + err.Error()))
			}
		case menuDemo:
			query, err := promptForScenario()
			if err != nil {
				return err
			}
			if query == "" {
				continue
			}
			if err := runQuery(cfg, query, false); err != nil {
				fmt.Println(errStyle.Render("Run failed: " + err.Error()))
			}
		case menuHistory:
			if err := showHistory(cfg); err != nil {
				fmt.Println(errStyle.Render("History unavailable: " + err.Error()))
			}
		case menuConfig:
			newConfigCmd(cfg).Run(nil, nil)
		case menuExit:
			return nil
		}
	}
}

func promptForQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "Research question:",
		Help:    "For example: Analyze AAPL stock, or: Assess the risk of my TSLA position",
	}

	err := survey.AskOne(prompt, &query, survey.WithValidator(func(val interface{}) error {
		if strings.TrimSpace(val.(string)) == "" {
			return fmt.Errorf("query cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

func promptForScenario() (string, error) {
	options := make([]string, 0, len(demoScenarios)+1)
	for _, s := range demoScenarios {
		options = append(options, s.label)
	}
	options = append(options, "Back")

	var choice string
	prompt := &survey.Select{
		Message: "Pick a scenario:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}

	for _, s := range demoScenarios {
		if s.label == choice {
			return s.query, nil
		}
	}
	return "", nil
}

func showHistory(cfg *config.Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListSessions(context.Background(), 0, 10)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println(dimStyle.Render("No sessions yet."))
		return nil
	}

	for _, s := range sessions {
		query := s.Query
		if len(query) > 60 {
			query = query[:60] + "..."
		}
		fmt.Printf("%s  %s  %s\n",
			dimStyle.Render(s.CreatedAt),
			nodeStyle.Render(s.Status),
			query)
	}
	return nil
}
