package store

import (
	"context"
	"fmt"
	"log"
)

// Bootstrap creates the system tables used by the migrator's sync log.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.HistoryTableSQL()); err != nil {
		return fmt.Errorf("create sync log table: %w", err)
	}
	log.Printf("System tables ready (%s)", s.Dialect.Name())
	return nil
}
