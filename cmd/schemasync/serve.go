package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"schemasync/internal/admin"
	"schemasync/internal/apierr"
	"schemasync/internal/auth"
	"schemasync/internal/metadata"
	"schemasync/internal/store"
	"schemasync/internal/syncrun"
	"schemasync/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin API over the loaded definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 1. Connect to database
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		// 2. Load definitions
		reg := metadata.NewRegistry()
		if err := loadRegistry(reg); err != nil {
			log.Printf("WARN: Failed to load definitions: %v", err)
		}

		// 3. Reload on change
		w := &watch.Watcher{
			Dir: cfg.Schema.Dir,
			OnChange: func(context.Context) {
				if err := loadRegistry(reg); err != nil {
					log.Printf("WARN: Reload failed, keeping %d entities: %v", reg.Len(), err)
				}
			},
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Printf("WARN: Definition watcher stopped: %v", err)
			}
		}()

		runner := &syncrun.Runner{
			Provider:    s,
			Mapper:      s.Dialect,
			Reconciler:  store.NewMigrator(s.Dialect, store.WithHistory(cfg.Schema.History)),
			Concurrency: cfg.Schema.Concurrency,
		}

		// 4. Create Fiber app
		app := fiber.New(fiber.Config{
			ErrorHandler:          apierr.Handler,
			DisableStartupMessage: true,
		})
		app.Use(recover.New(recover.Config{
			EnableStackTrace: true,
		}))
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "entities": reg.Len()})
		})

		// 5. Admin routes; sync requires an admin token when a secret is set
		var syncMW []fiber.Handler
		if cfg.JWTSecret != "" {
			syncMW = append(syncMW, auth.Bearer(cfg.JWTSecret), auth.RequireRole("admin"))
		} else {
			log.Println("WARN: jwt_secret not set, sync endpoints are unauthenticated")
		}
		admin.RegisterAdminRoutes(app, admin.NewHandler(reg, s.Dialect, runner), syncMW...)

		// 6. Start server
		errc := make(chan error, 1)
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			log.Printf("Listening on %s (%d entities)", addr, reg.Len())
			errc <- app.Listen(addr)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port")
}
