package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AntonStoeckl/library-rentals-go/checkout"
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
)

const (
	logMsgRequest    = "http request"
	logAttrMethod    = "method"
	logAttrLatencyMS = "latency_ms"
	logAttrRequestID = "request_id"

	logMsgWebhookRejected = "checkout webhook rejected"

	// SignatureHeader carries the checkout provider's webhook signature.
	SignatureHeader = "Stripe-Signature"
)

// WebhookParser verifies and decodes checkout provider webhooks.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (checkout.Event, error)
}

// Handlers are the command and query handlers the API dispatches to, usually observable wrappers.
type Handlers struct {
	AddBook         shell.CoreCommandHandler[addbook.Command, addbook.Result]
	CreateBorrowing shell.CoreCommandHandler[createborrowing.Command, createborrowing.Result]
	ReturnBorrowing shell.CoreCommandHandler[returnborrowing.Command, returnborrowing.Result]
	InitiatePayment shell.CoreCommandHandler[initiatepayment.Command, initiatepayment.Result]
	CompletePayment shell.CoreCommandHandler[completepayment.Command, shell.HandlerResult]
	LinkChannel     shell.CoreCommandHandler[linkchannel.Command, linkchannel.Result]
	ScanOverdue     shell.CoreCommandHandler[scanoverdue.Command, scanoverdue.Result]

	ListBorrowings    shell.QueryHandler[borrowings.ListQuery, borrowings.Borrowings]
	BorrowingDetail   shell.QueryHandler[borrowings.DetailQuery, core.Borrowing]
	OverdueBorrowings shell.QueryHandler[borrowings.OverdueQuery, borrowings.OverdueBorrowings]
	ListPayments      shell.QueryHandler[payments.ListQuery, payments.Payments]
	PaymentDetail     shell.QueryHandler[payments.DetailQuery, core.Payment]

	Webhooks WebhookParser
}

// API holds the request handlers.
type API struct {
	handlers  Handlers
	jwtSecret []byte
	clock     func() time.Time
	logger    shell.Logger
}

// Option configures the API.
type Option func(*API)

// WithClock sets the time source for the calendar day of commands.
func WithClock(clock func() time.Time) Option {
	return func(a *API) {
		a.clock = clock
	}
}

// WithLogger sets the logger for the request log and server errors.
func WithLogger(logger shell.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New builds the echo instance with all routes registered.
func New(handlers Handlers, jwtSecret []byte, opts ...Option) *echo.Echo {
	api := &API{
		handlers:  handlers,
		jwtSecret: jwtSecret,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(api)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler(api.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(api.requestLog)

	api.register(e)

	return e
}

func (a *API) register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	public := e.Group("/v1")
	public.POST("/payments/webhook", a.webhook, middleware.BodyLimit("64K"))

	v1 := e.Group("/v1", authenticate(a.jwtSecret))
	v1.POST("/books", a.addBook, staffOnly)
	v1.POST("/borrowings", a.createBorrowing)
	v1.GET("/borrowings", a.listBorrowings)
	v1.GET("/borrowings/overdue", a.overdueBorrowings)
	v1.GET("/borrowings/:id", a.borrowingDetail)
	v1.POST("/borrowings/:id/return", a.returnBorrowing)
	v1.POST("/borrowings/:id/payments", a.initiatePayment)
	v1.GET("/payments", a.listPayments)
	v1.GET("/payments/:id", a.paymentDetail)
	v1.POST("/channels", a.linkChannel)
	v1.POST("/admin/overdue-scan", a.scanOverdue, staffOnly)
}

func (a *API) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		if a.logger != nil {
			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}

			a.logger.Info(logMsgRequest,
				logAttrMethod, c.Request().Method,
				logAttrPath, c.Path(),
				logAttrStatus, status,
				logAttrLatencyMS, time.Since(start).Milliseconds(),
				logAttrRequestID, c.Response().Header().Get(echo.HeaderXRequestID),
			)
		}

		return err
	}
}
