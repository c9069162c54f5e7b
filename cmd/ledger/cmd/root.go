// Package cmd provides CLI commands for the ledger tool.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qahwahub/cafe-ledger/pkg/access"
	"github.com/qahwahub/cafe-ledger/pkg/balance"
	"github.com/qahwahub/cafe-ledger/pkg/config"
	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/eventstore"
	"github.com/qahwahub/cafe-ledger/pkg/export"
	"github.com/qahwahub/cafe-ledger/pkg/report"
	"github.com/qahwahub/cafe-ledger/pkg/shares"
)

var (
	cfgFile    string
	debug      bool
	roleFlag   string
	userBranch string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Multi-branch café ledger and reporting engine",
	Long: `ledger records immutable financial events scoped to branches,
maintains running bank and capital balances derived from them, and
aggregates them into financial reports.

Example:
  ledger record sale --branch main_branch --amount 250 --date 2024-01-05
  ledger balance --branch main_branch
  ledger report --branch main_branch --from 2024-01-01 --to 2024-01-31
  ledger stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", string(access.RoleOwner), "role to act as (owner|accountant|manager|operational_manager)")
	rootCmd.PersistentFlags().StringVar(&userBranch, "assigned-branch", "", "assigned branch for the manager role")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
}

// engine bundles the wired components a command operates on.
type engine struct {
	cfg      *config.Config
	docs     docstore.Store
	events   *eventstore.Store
	balances *balance.Reconciler
	shares   *shares.Registry
	reports  *report.Aggregator
	resolver *access.Resolver
	labels   *export.Labels
	user     access.User
}

// openEngine loads configuration and wires every component over one shared
// store handle.
func openEngine() (*engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	role := access.Role(roleFlag)
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", roleFlag)
	}

	docs, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	labels := export.DefaultLabels()
	if cfg.LabelsPath != "" {
		labels, err = export.LoadLabels(cfg.LabelsPath)
		if err != nil {
			docs.Close()
			return nil, fmt.Errorf("failed to load labels: %w", err)
		}
	}

	events := eventstore.New(docs)
	balances := balance.New(events)

	return &engine{
		cfg:      cfg,
		docs:     docs,
		events:   events,
		balances: balances,
		shares:   shares.New(events),
		reports:  report.New(events, balances),
		resolver: access.NewResolver(events),
		labels:   labels,
		user:     access.User{Role: role, BranchID: userBranch},
	}, nil
}

func (e *engine) close() {
	if err := e.docs.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}

// exitOnError logs the error and exits.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
