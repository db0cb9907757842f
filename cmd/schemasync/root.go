package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"schemasync/internal/config"
	"schemasync/internal/metadata"
	"schemasync/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Keep SQL tables in line with declarative entity definitions",
	Long: `schemasync reads entity definitions (YAML files in the schema directory),
resolves every field to a column constraint for the configured database and
creates missing tables and columns. Existing columns are never altered.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./schemasync.yaml)")
	pf.String("driver", "", "database driver: postgres, sqlite or mysql")
	pf.String("dsn", "", "database source name; overrides the discrete database settings")
	pf.String("schema-dir", "", "directory of entity definition files")

	rootCmd.AddCommand(inspectCmd, syncCmd, serveCmd, tokenCmd)
}

// loadRegistry reads every definition file in the schema directory.
func loadRegistry(reg *metadata.Registry) error {
	entities, err := metadata.LoadDir(cfg.Schema.Dir)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	reg.Load(entities)
	return nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	s, err := store.New(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Printf("Database connected (%s)", s.Dialect.Name())

	if cfg.Schema.History {
		if err := s.Bootstrap(cmd.Context()); err != nil {
			s.Close()
			return nil, fmt.Errorf("bootstrap system tables: %w", err)
		}
	}
	return s, nil
}
