// Command medctl is the MedTrack operations CLI.
//
// Usage:
//
//	medctl vapid generate
//	medctl notify test --user <id>
//	medctl cleanup logs --days 90
//	medctl subscriptions list
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/smartaid/medtrack/internal/config"
	"github.com/smartaid/medtrack/internal/db"
	"github.com/smartaid/medtrack/internal/notify"
	"github.com/smartaid/medtrack/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "medctl",
		Short: "MedTrack operations CLI",
	}

	root.AddCommand(vapidCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(cleanupCmd())
	root.AddCommand(subscriptionsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// vapid command
// --------------------------------------------------------------------------

func vapidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vapid",
		Short: "VAPID key management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a VAPID keypair for web push",
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
			if err != nil {
				return fmt.Errorf("generate VAPID keys: %w", err)
			}
			fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
			fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
			return nil
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Push notification tools",
	}
	cmd.AddCommand(notifyTestCmd())
	return cmd
}

func notifyTestCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test push to one user's stored subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if !cfg.PushConfigured() {
					return fmt.Errorf("VAPID keys are not configured")
				}

				registry := notify.NewRegistry(logger)
				registry.Load(ctx, pool.Pool)
				if !registry.Has(userID) {
					return fmt.Errorf("no push subscription for user %s", userID)
				}

				dispatcher := notify.NewDispatcher(registry,
					cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, logger)
				ok := dispatcher.SendTestRefill(ctx, userID)
				if !ok {
					return fmt.Errorf("delivery failed for user %s", userID)
				}
				logger.Info("Test notification delivered", "user_id", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to notify")
	return cmd
}

// --------------------------------------------------------------------------
// cleanup command
// --------------------------------------------------------------------------

func cleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "One-off maintenance tasks",
	}
	cmd.AddCommand(cleanupLogsCmd())
	return cmd
}

func cleanupLogsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Purge dose logs older than a retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				tag, err := pool.Exec(ctx, `
					DELETE FROM medication_surveys
					WHERE medication_log_id IN (
						SELECT id FROM medication_logs
						WHERE created_at < NOW() - make_interval(days => $1))`, days)
				if err != nil {
					return fmt.Errorf("purge surveys: %w", err)
				}
				logger.Info("Purged surveys", "count", tag.RowsAffected())

				tag, err = pool.Exec(ctx, `
					DELETE FROM medication_logs
					WHERE created_at < NOW() - make_interval(days => $1)`, days)
				if err != nil {
					return fmt.Errorf("purge logs: %w", err)
				}
				logger.Info("Purged logs", "count", tag.RowsAffected(), "days", days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Retention window in days")
	return cmd
}

// --------------------------------------------------------------------------
// subscriptions command
// --------------------------------------------------------------------------

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Push subscription tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored push subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				subs, err := store.ListSubscriptions(ctx, pool.Pool)
				if err != nil {
					return fmt.Errorf("list subscriptions: %w", err)
				}
				for _, s := range subs {
					expires := "never"
					if s.ExpirationTime != nil {
						expires = s.ExpirationTime.Format("2006-01-02 15:04")
					}
					fmt.Printf("%s\t%s\texpires=%s\n", s.UserID, s.Endpoint, expires)
				}
				logger.Info("Subscriptions listed", "count", len(subs))
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithPool handles config loading, DB connection, and context cancellation.
func runWithPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
