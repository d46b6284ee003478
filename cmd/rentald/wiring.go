package main

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rentals-go/features/command/completepayment"
	"github.com/AntonStoeckl/library-rentals-go/features/command/createborrowing"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/features/command/linkchannel"
	"github.com/AntonStoeckl/library-rentals-go/features/command/returnborrowing"
	"github.com/AntonStoeckl/library-rentals-go/features/command/scanoverdue"
	"github.com/AntonStoeckl/library-rentals-go/features/query/borrowings"
	"github.com/AntonStoeckl/library-rentals-go/features/query/payments"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/shell/observable"
	"github.com/AntonStoeckl/library-rentals-go/transport/httpapi"
)

// rentalStore is everything the handlers need from a storage engine.
// Both postgresengine.Store and memoryengine.Store implement it.
type rentalStore interface {
	addbook.Store
	createborrowing.Store
	returnborrowing.Store
	completepayment.Store
	initiatepayment.Store
	initiatepayment.ReadStore
	linkchannel.Store
	scanoverdue.Store
	borrowings.Store
	payments.Store
}

// observability bundles the collectors every handler is wrapped with.
type observability struct {
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
}

// components are the assembled handlers, plus the raw scan handler the scheduler runs.
type components struct {
	handlers httpapi.Handlers
	scan     shell.CoreCommandHandler[scanoverdue.Command, scanoverdue.Result]
}

type wiringOptions struct {
	chargeRentalFee bool
	clock           func() time.Time
}

func buildComponents(
	s rentalStore,
	provider initiatepayment.CheckoutProvider,
	webhooks httpapi.WebhookParser,
	publisher shell.EventPublisher,
	obs observability,
	opts wiringOptions,
) (components, error) {

	if opts.clock == nil {
		opts.clock = time.Now
	}

	engine := initiatepayment.NewEngine(s, provider,
		initiatepayment.WithClock(opts.clock),
		initiatepayment.WithEngineLogger(obs.logger),
	)

	createOptions := []createborrowing.Option{
		createborrowing.WithEventPublisher(publisher),
		createborrowing.WithLogger(obs.logger),
		createborrowing.WithMetrics(obs.metrics),
	}
	if opts.chargeRentalFee {
		createOptions = append(createOptions, createborrowing.WithRentalFeePayment(engine))
	}

	var errs []error

	scan := wrapCommand[scanoverdue.Command, scanoverdue.Result](scanoverdue.NewCommandHandler(s, publisher,
		scanoverdue.WithLogger(obs.logger),
		scanoverdue.WithMetrics(obs.metrics),
	), obs, &errs)

	handlers := httpapi.Handlers{
		AddBook:         wrapCommand[addbook.Command, addbook.Result](addbook.NewCommandHandler(s), obs, &errs),
		CreateBorrowing: wrapCommand[createborrowing.Command, createborrowing.Result](createborrowing.NewCommandHandler(s, createOptions...), obs, &errs),
		ReturnBorrowing: wrapCommand[returnborrowing.Command, returnborrowing.Result](returnborrowing.NewCommandHandler(s, engine,
			returnborrowing.WithEventPublisher(publisher),
			returnborrowing.WithLogger(obs.logger),
			returnborrowing.WithMetrics(obs.metrics),
		), obs, &errs),
		InitiatePayment: wrapCommand[initiatepayment.Command, initiatepayment.Result](initiatepayment.NewCommandHandler(s, engine), obs, &errs),
		CompletePayment: wrapCommand[completepayment.Command, shell.HandlerResult](completepayment.NewCommandHandler(s,
			completepayment.WithEventPublisher(publisher),
			completepayment.WithLogger(obs.logger),
			completepayment.WithMetrics(obs.metrics),
		), obs, &errs),
		LinkChannel: wrapCommand[linkchannel.Command, linkchannel.Result](linkchannel.NewCommandHandler(s), obs, &errs),
		ScanOverdue: scan,

		ListBorrowings:    wrapQuery[borrowings.ListQuery, borrowings.Borrowings](borrowings.NewListQueryHandler(s), obs, &errs),
		BorrowingDetail:   wrapQuery[borrowings.DetailQuery, core.Borrowing](borrowings.NewDetailQueryHandler(s), obs, &errs),
		OverdueBorrowings: wrapQuery[borrowings.OverdueQuery, borrowings.OverdueBorrowings](borrowings.NewOverdueQueryHandler(s), obs, &errs),
		ListPayments:      wrapQuery[payments.ListQuery, payments.Payments](payments.NewListQueryHandler(s), obs, &errs),
		PaymentDetail:     wrapQuery[payments.DetailQuery, core.Payment](payments.NewDetailQueryHandler(s), obs, &errs),

		Webhooks: webhooks,
	}

	if err := errors.Join(errs...); err != nil {
		return components{}, err
	}

	return components{handlers: handlers, scan: scan}, nil
}

// wrapCommand decorates handler with metrics, tracing and logging. Construction errors are appended to errs.
func wrapCommand[C shell.Command, R shell.CommandResult](
	handler shell.CoreCommandHandler[C, R],
	obs observability,
	errs *[]error,
) shell.CoreCommandHandler[C, R] {

	opts := []observable.CommandOption[C, R]{
		observable.WithCommandMetrics[C, R](obs.metrics),
		observable.WithCommandTracing[C, R](obs.tracing),
	}

	if obs.contextualLogger != nil {
		opts = append(opts, observable.WithCommandContextualLogging[C, R](obs.contextualLogger))
	} else {
		opts = append(opts, observable.WithCommandLogging[C, R](obs.logger))
	}

	wrapper, err := observable.NewCommandWrapper(handler, opts...)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}

	return wrapper
}

func wrapQuery[Q shell.Query, R any](
	handler shell.QueryHandler[Q, R],
	obs observability,
	errs *[]error,
) shell.QueryHandler[Q, R] {

	opts := []observable.QueryOption[Q, R]{
		observable.WithQueryMetrics[Q, R](obs.metrics),
		observable.WithQueryTracing[Q, R](obs.tracing),
	}

	if obs.contextualLogger != nil {
		opts = append(opts, observable.WithQueryContextualLogging[Q, R](obs.contextualLogger))
	} else {
		opts = append(opts, observable.WithQueryLogging[Q, R](obs.logger))
	}

	wrapper, err := observable.NewQueryWrapper(handler, opts...)
	if err != nil {
		*errs = append(*errs, err)
		return nil
	}

	return wrapper
}
