package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/AntonStoeckl/library-rentals-go/checkout/fakecheckout"
	"github.com/AntonStoeckl/library-rentals-go/checkout/stripecheckout"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/notify"
	"github.com/AntonStoeckl/library-rentals-go/notify/amqpnotify"
	"github.com/AntonStoeckl/library-rentals-go/notify/lognotify"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/shell/config"
	"github.com/AntonStoeckl/library-rentals-go/shell/oteladapters"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine"
	"github.com/AntonStoeckl/library-rentals-go/transport/httpapi"
)

const (
	instrumentationName = "github.com/AntonStoeckl/library-rentals-go"

	// fakeCheckoutBaseURL prefixes the session urls of the fake checkout provider.
	fakeCheckoutBaseURL = "http://localhost:8080/checkout/"
)

// runtime holds the infrastructure one rentald command runs on.
type runtime struct {
	cfg       config.App
	logger    *slog.Logger
	obs       observability
	store     postgresengine.Store
	provider  initiatepayment.CheckoutProvider
	webhooks  httpapi.WebhookParser
	publisher shell.EventPublisher
	closers   []func(ctx context.Context) error
}

type checkoutProvider interface {
	initiatepayment.CheckoutProvider
	httpapi.WebhookParser
}

func newLogger(cfg config.App) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})

	return slog.New(handler).With("service", cfg.ServiceName)
}

// newRuntime connects everything the command needs. Call close when done, also after an error.
func newRuntime(ctx context.Context, cfg config.App, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	if err := rt.setupTelemetry(ctx); err != nil {
		return rt, err
	}

	if err := rt.openStore(ctx); err != nil {
		return rt, err
	}

	if err := rt.setupCheckout(); err != nil {
		return rt, err
	}

	if err := rt.setupPublisher(); err != nil {
		return rt, err
	}

	return rt, nil
}

func (rt *runtime) setupTelemetry(ctx context.Context) error {
	rt.obs = observability{
		logger:           rt.logger,
		contextualLogger: oteladapters.NewTraceCorrelatingLogger(rt.logger),
		metrics:          oteladapters.NewMetricsCollector(metricnoop.NewMeterProvider().Meter(instrumentationName)),
		tracing:          oteladapters.NewTracingCollector(tracenoop.NewTracerProvider().Tracer(instrumentationName)),
	}

	if rt.cfg.OTLPEndpoint == "" {
		return nil
	}

	providers, err := config.NewObservabilityProviders(ctx, rt.cfg.ServiceName, rt.cfg.OTLPEndpoint)
	if err != nil {
		return err
	}

	rt.closers = append(rt.closers, providers.Shutdown)
	rt.obs.metrics = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName))
	rt.obs.tracing = oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(instrumentationName))

	return nil
}

func (rt *runtime) openStore(ctx context.Context) error {
	opts := []postgresengine.Option{
		postgresengine.WithLogger(rt.logger),
		postgresengine.WithMetrics(rt.obs.metrics),
	}

	var err error

	switch rt.cfg.DBAdapter {
	case config.AdapterSQLDB:
		rt.store, err = rt.openSQLDBStore(ctx, opts)
	case config.AdapterSQLXDB:
		rt.store, err = rt.openSQLXStore(ctx, opts)
	default:
		rt.store, err = rt.openPGXStore(ctx, opts)
	}

	return err
}

func (rt *runtime) openPGXStore(ctx context.Context, opts []postgresengine.Option) (postgresengine.Store, error) {
	pool, err := config.OpenPGXPool(ctx, rt.cfg.DatabaseDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { pool.Close(); return nil })

	if rt.cfg.DatabaseReplicaDSN == "" {
		return postgresengine.NewStoreFromPGXPool(pool, opts...)
	}

	replica, err := config.OpenPGXPool(ctx, rt.cfg.DatabaseReplicaDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { replica.Close(); return nil })

	return postgresengine.NewStoreFromPGXPoolAndReplica(pool, replica, opts...)
}

func (rt *runtime) openSQLDBStore(ctx context.Context, opts []postgresengine.Option) (postgresengine.Store, error) {
	db, err := config.OpenSQLDB(ctx, rt.cfg.DatabaseDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })

	if rt.cfg.DatabaseReplicaDSN == "" {
		return postgresengine.NewStoreFromSQLDB(db, opts...)
	}

	replica, err := config.OpenSQLDB(ctx, rt.cfg.DatabaseReplicaDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return replica.Close() })

	return postgresengine.NewStoreFromSQLDBAndReplica(db, replica, opts...)
}

func (rt *runtime) openSQLXStore(ctx context.Context, opts []postgresengine.Option) (postgresengine.Store, error) {
	db, err := config.OpenSQLX(ctx, rt.cfg.DatabaseDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })

	if rt.cfg.DatabaseReplicaDSN == "" {
		return postgresengine.NewStoreFromSQLX(db, opts...)
	}

	replica, err := config.OpenSQLX(ctx, rt.cfg.DatabaseReplicaDSN)
	if err != nil {
		return postgresengine.Store{}, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return replica.Close() })

	return postgresengine.NewStoreFromSQLXAndReplica(db, replica, opts...)
}

func (rt *runtime) setupCheckout() error {
	var provider checkoutProvider

	if rt.cfg.CheckoutProvider == config.CheckoutFake {
		provider = fakecheckout.New(fakeCheckoutBaseURL, rt.cfg.StripeWebhookSecret)
	} else {
		stripeProvider, err := stripecheckout.New(stripecheckout.Config{
			SecretKey:     rt.cfg.StripeSecretKey,
			WebhookSecret: rt.cfg.StripeWebhookSecret,
			Currency:      rt.cfg.CheckoutCurrency,
			SuccessURL:    rt.cfg.CheckoutSuccessURL,
			CancelURL:     rt.cfg.CheckoutCancelURL,
		})
		if err != nil {
			return err
		}
		provider = stripeProvider
	}

	rt.provider = provider
	rt.webhooks = provider

	return nil
}

func (rt *runtime) setupPublisher() error {
	if rt.cfg.Notifier != config.NotifierAMQP {
		rt.publisher = notify.NewDispatcher(lognotify.New(rt.logger))
		return nil
	}

	broker, err := amqpnotify.Dial(amqpnotify.Config{
		URL:      rt.cfg.AMQPURL,
		Exchange: rt.cfg.AMQPExchange,
	})
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return broker.Close() })
	rt.publisher = broker.Publisher()

	return nil
}

func (rt *runtime) components() (components, error) {
	return buildComponents(rt.store, rt.provider, rt.webhooks, rt.publisher, rt.obs, wiringOptions{
		chargeRentalFee: rt.cfg.ChargeRentalFee,
	})
}

// close releases everything in reverse order of acquisition.
func (rt *runtime) close(ctx context.Context) error {
	var errs []error

	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i](ctx))
	}

	return errors.Join(errs...)
}
