// Command example resolves a small annotated model against the Postgres
// dialect and then syncs it into a throwaway SQLite database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"schemasync/internal/config"
	"schemasync/internal/metadata"
	"schemasync/internal/store"
)

type TestModel struct {
	ID          uuid.UUID `field:"select"`
	Name        string    `field:"not_null;unique;select"`
	Description *string
}

func (TestModel) TableName() string { return "test" }

func main() {
	ctx := context.Background()

	model, err := metadata.FromStruct(TestModel{})
	if err != nil {
		log.Fatalf("Failed to define entity: %v", err)
	}

	pg := &store.PostgresDialect{}
	fmt.Println(model.Fields())
	fmt.Println(model.FieldType("id", pg))
	fmt.Println(model.FieldConstraints("name", pg))

	dir, err := os.MkdirTemp("", "schemasync-example")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Path: dir, Name: "example"})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	if err := model.Sync(ctx, s, s.Dialect, store.NewMigrator(s.Dialect)); err != nil {
		log.Fatalf("Sync failed: %v", err)
	}
	cols, err := s.Dialect.GetColumns(ctx, s.DB, model.Table())
	if err != nil {
		log.Fatalf("Failed to read columns: %v", err)
	}
	fmt.Println(cols)
}
