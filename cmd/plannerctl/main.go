// Command plannerctl runs planner maintenance tasks against the database
// and the recalculation queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/database"
	"github.com/gradplan/planner-backend/internal/logger"
)

// env holds the lazily opened connections shared by the subcommands.
type env struct {
	cfg  *config.Config
	log  zerolog.Logger
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func (e *env) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if e.pool == nil {
		pool, err := database.NewPostgresPool(ctx, e.cfg, e.log)
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}
	return e.pool, nil
}

func (e *env) redis(ctx context.Context) (*redis.Client, error) {
	if e.rdb == nil {
		rdb, err := database.NewRedisClient(ctx, e.cfg, e.log)
		if err != nil {
			return nil, err
		}
		e.rdb = rdb
	}
	return e.rdb, nil
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
}

func newRootCmd(e *env) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Maintenance commands for the graduation planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if e.cfg == nil {
				e.cfg = config.Load()
			}
			level := e.cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			e.log = logger.Setup(level, e.cfg.LogFormat, "plannerctl")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		newRecalcCmd(e),
		newEnqueueCmd(e),
		newRepairTotalsCmd(e),
		newTokenCmd(e),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	e := &env{}

	err := newRootCmd(e).ExecuteContext(ctx)
	e.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
