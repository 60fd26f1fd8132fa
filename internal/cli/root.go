// Package cli implements the neoviz command-line interface.
//
// Commands:
//   - query: run a Cypher or canned query and print the viewer JSON or an HTML page
//   - serve: run the HTTP/WebSocket API
//   - seed: load the prior-authorization demo dataset
//   - queries: list the canned queries
//
// Configuration comes from a TOML file (--config) with individual Neo4j settings
// overridable by flags.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version, normally injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	neo4j      neoviz.Neo4jConfig // flag overrides, applied only when set
	cfg        config.Config      // resolved configuration
}

// Execute runs the neoviz CLI and returns an error if any command fails.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "neoviz",
		Short:        "neoviz turns Neo4j query results into graph viewer data",
		Long:         `neoviz runs Cypher queries against Neo4j and converts the resulting property graph into the dense node/link format of browser graph viewers.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyOverrides(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg

			level, _ := cfg.LogLevel()
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			formatter, _ := cfg.LogFormatter()
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level, formatter)))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("neoviz %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&opts.neo4j.URI, "uri", "", "neo4j connection URI")
	flags.StringVar(&opts.neo4j.Username, "username", "", "neo4j username")
	flags.StringVar(&opts.neo4j.Password, "password", "", "neo4j password")
	flags.StringVar(&opts.neo4j.Database, "database", "", "neo4j database name")

	root.AddCommand(newQueryCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newQueriesCmd(opts))

	return root
}

// applyOverrides copies explicitly set Neo4j flags over the file configuration.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *globalOptions) {
	flags := cmd.Flags()
	if flags.Changed("uri") {
		cfg.Neo4j.URI = opts.neo4j.URI
	}
	if flags.Changed("username") {
		cfg.Neo4j.Username = opts.neo4j.Username
	}
	if flags.Changed("password") {
		cfg.Neo4j.Password = opts.neo4j.Password
	}
	if flags.Changed("database") {
		cfg.Neo4j.Database = opts.neo4j.Database
	}
}
