package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/scanoverdue"
	"github.com/AntonStoeckl/library-rentals-go/notify"
	"github.com/AntonStoeckl/library-rentals-go/notify/amqpnotify"
	"github.com/AntonStoeckl/library-rentals-go/notify/lognotify"
	"github.com/AntonStoeckl/library-rentals-go/shell/config"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine"
	"github.com/AntonStoeckl/library-rentals-go/transport/httpapi"
)

const (
	flagEnvFile = "env-file"
	flagUserID  = "user-id"
	flagStaff   = "staff"
	flagTTL     = "ttl"

	shutdownTimeout = 10 * time.Second
	relayConsumer   = "rentald-notify-relay"

	logMsgServing        = "serving http"
	logMsgStopped        = "stopped"
	logMsgScanCompleted  = "overdue scan completed"
	logMsgRelayRunning   = "notification relay running"
	logMsgMigrationsDone = "migrations applied"
	logMsgCloseFailed    = "releasing resources failed"
)

var (
	// ErrMissingJWTSecret is returned when serve or token run without JWT_SECRET.
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

	// ErrRelayNeedsAMQP is returned when notify-relay runs with a notifier other than amqp.
	ErrRelayNeedsAMQP = errors.New("notify-relay requires NOTIFIER=amqp")
)

func loadConfig(c *cli.Context) (config.App, error) {
	return config.Load(c.StringSlice(flagEnvFile)...)
}

// withRuntime loads the config, builds the runtime, runs fn and releases the runtime.
func withRuntime(c *cli.Context, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if closeErr := rt.close(closeCtx); closeErr != nil {
			logger.Error(logMsgCloseFailed, "error", closeErr.Error())
		}
	}()
	if err != nil {
		return err
	}

	return fn(ctx, rt)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API and run the overdue scanner on its schedule",
		Action: func(c *cli.Context) error {
			return withRuntime(c, serve)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	if rt.cfg.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	comps, err := rt.components()
	if err != nil {
		return err
	}

	schedulerOptions := []scanoverdue.SchedulerOption{
		scanoverdue.WithInterval(rt.cfg.ScanInterval),
		scanoverdue.WithSchedulerLogger(rt.logger),
	}
	if rt.cfg.ScanOnServe {
		schedulerOptions = append(schedulerOptions, scanoverdue.WithScanOnStart())
	}

	scheduler, err := scanoverdue.NewScheduler(comps.scan, schedulerOptions...)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         rt.cfg.HTTPAddr,
		Handler:      httpapi.New(comps.handlers, []byte(rt.cfg.JWTSecret), httpapi.WithLogger(rt.logger)),
		ReadTimeout:  rt.cfg.ReadTimeout,
		WriteTimeout: rt.cfg.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rt.logger.Info(logMsgServing, "addr", rt.cfg.HTTPAddr)

		if serveErr := server.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}

		return nil
	})

	group.Go(func() error {
		return scheduler.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	rt.logger.Info(logMsgStopped)

	return err
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "apply (up) or revert (down) the database schema",
		ArgsUsage: "[up|down]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			direction := postgresengine.MigrateUp
			if c.Args().Present() {
				direction = postgresengine.MigrationDirection(c.Args().First())
			}

			if err := postgresengine.Migrate(cfg.DatabaseDSN, direction); err != nil {
				return err
			}

			newLogger(cfg).Info(logMsgMigrationsDone, "direction", string(direction))

			return nil
		},
	}
}

func scanOverdueCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan-overdue",
		Usage: "run one overdue scan and exit",
		Action: func(c *cli.Context) error {
			return withRuntime(c, scanOnce)
		},
	}
}

func scanOnce(ctx context.Context, rt *runtime) error {
	comps, err := rt.components()
	if err != nil {
		return err
	}

	result, err := comps.scan.Handle(ctx, scanoverdue.BuildCommand(time.Now()))
	if err != nil {
		return err
	}

	rt.logger.Info(logMsgScanCompleted,
		"overdue", result.Overdue,
		"notified", result.Notified,
		"skipped", result.Skipped,
		"all_clear", result.AllClear,
	)

	return nil
}

func notifyRelayCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify-relay",
		Usage: "consume rental notices from the broker and deliver them",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			if cfg.Notifier != config.NotifierAMQP {
				return ErrRelayNeedsAMQP
			}

			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			broker, err := amqpnotify.Dial(amqpnotify.Config{
				URL:      cfg.AMQPURL,
				Exchange: cfg.AMQPExchange,
				Queue:    cfg.AMQPQueue,
			})
			if err != nil {
				return err
			}
			defer func() { _ = broker.Close() }() // makes no sense to handle this

			deliveries, err := broker.Deliveries(ctx, relayConsumer)
			if err != nil {
				return err
			}

			relay := amqpnotify.NewRelay(
				notify.NewDispatcher(lognotify.New(logger)),
				amqpnotify.WithRelayLogger(logger),
			)

			logger.Info(logMsgRelayRunning, "queue", cfg.AMQPQueue)

			return relay.Run(ctx, deliveries)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a bearer token for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagUserID, Usage: "user id, a random one when empty"},
			&cli.BoolFlag{Name: flagStaff, Usage: "issue a staff token"},
			&cli.DurationFlag{Name: flagTTL, Usage: "token lifetime", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			if cfg.JWTSecret == "" {
				return ErrMissingJWTSecret
			}

			viewer, err := viewerFromFlags(c)
			if err != nil {
				return err
			}

			token, err := httpapi.IssueToken([]byte(cfg.JWTSecret), viewer, c.Duration(flagTTL), time.Now())
			if err != nil {
				return err
			}

			_, err = c.App.Writer.Write([]byte(token + "\n"))

			return err
		},
	}
}

func viewerFromFlags(c *cli.Context) (core.Viewer, error) {
	viewer := core.Viewer{UserID: uuid.New(), IsStaff: c.Bool(flagStaff)}

	if raw := c.String(flagUserID); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return core.Viewer{}, err
		}
		viewer.UserID = userID
	}

	return viewer, nil
}
