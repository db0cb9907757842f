package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"schemasync/internal/metadata"
	"schemasync/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [entity...]",
	Short: "Print resolved columns without touching the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := metadata.NewRegistry()
		if err := loadRegistry(reg); err != nil {
			return err
		}
		mapper := store.NewDialect(cfg.Database.Driver)

		entities := reg.AllEntities()
		if len(args) > 0 {
			entities = nil
			for _, name := range args {
				e := reg.GetEntity(name)
				if e == nil {
					return fmt.Errorf("unknown entity: %s", name)
				}
				entities = append(entities, e)
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		var unresolved []error
		for _, e := range entities {
			fmt.Fprintf(w, "%s (table %s, %s)\n", e.Name(), e.Table(), mapper.Name())
			for _, name := range e.Fields() {
				cons, _, err := e.FieldConstraints(name, mapper)
				if err != nil {
					unresolved = append(unresolved, err)
					cons = "?"
				}
				fmt.Fprintf(w, "  %s\t%s\n", name, cons)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return errors.Join(unresolved...)
	},
}
