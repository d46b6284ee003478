package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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

// bindValid binds the JSON body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	if err := c.Validate(req); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	return nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidRequest, err)
	}

	return id, nil
}

func (a *API) addBook(c echo.Context) error {
	var req addBookRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	fee, err := decimal.NewFromString(req.DailyFee)
	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	command := addbook.BuildCommand(req.Title, req.Author, core.Cover(req.Cover), *req.Inventory, fee)

	result, err := a.handlers.AddBook.Handle(c.Request().Context(), command)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookResponseOf(result.Book))
}

func (a *API) createBorrowing(c echo.Context) error {
	var req createBorrowingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	expected, err := core.ParseDate(req.ExpectedReturnDate)
	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	command := createborrowing.BuildCommand(viewerOf(c).UserID, uuid.MustParse(req.BookID), expected, a.clock())

	result, err := a.handlers.CreateBorrowing.Handle(c.Request().Context(), command)
	if err != nil {
		return err
	}

	response := createdBorrowingResponse{Borrowing: borrowingResponseOf(result.Borrowing)}
	if result.Payment != nil {
		handle := paymentHandleResponseOf(*result.Payment)
		response.Payment = &handle
	}
	if result.PaymentErr != nil {
		response.PaymentError = result.PaymentErr.Error()
	}

	return c.JSON(http.StatusCreated, response)
}

func (a *API) listBorrowings(c echo.Context) error {
	query := borrowings.BuildListQuery(viewerOf(c), nil, nil)

	if raw := c.QueryParam("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
		query.IsActive = &isActive
	}

	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
		query.UserID = &userID
	}

	result, err := a.handlers.ListBorrowings.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponseOf(result.Items, borrowingResponseOf))
}

func (a *API) overdueBorrowings(c echo.Context) error {
	result, err := a.handlers.OverdueBorrowings.Handle(c.Request().Context(), borrowings.BuildOverdueQuery(viewerOf(c).UserID, a.clock()))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponseOf(result.Items, overdueResponseOf))
}

func (a *API) borrowingDetail(c echo.Context) error {
	borrowingID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	borrowing, err := a.handlers.BorrowingDetail.Handle(c.Request().Context(), borrowings.BuildDetailQuery(viewerOf(c), borrowingID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, borrowingResponseOf(borrowing))
}

func (a *API) returnBorrowing(c echo.Context) error {
	borrowingID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	viewer := viewerOf(c)
	command := returnborrowing.BuildCommand(borrowingID, viewer.UserID, viewer.IsStaff, a.clock())

	result, err := a.handlers.ReturnBorrowing.Handle(c.Request().Context(), command)
	if err != nil {
		return err
	}

	if result.PaymentRequired {
		response := returnResponse{Message: "the return is late, pay the fine to complete it"}
		if result.Payment != nil {
			handle := paymentHandleResponseOf(*result.Payment)
			response.Payment = &handle
		}

		return c.JSON(http.StatusPaymentRequired, response)
	}

	returned := borrowingResponseOf(result.Borrowing)

	return c.JSON(http.StatusOK, returnResponse{Borrowing: &returned})
}

func (a *API) initiatePayment(c echo.Context) error {
	borrowingID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	viewer := viewerOf(c)

	result, err := a.handlers.InitiatePayment.Handle(c.Request().Context(), initiatepayment.BuildCommand(borrowingID, viewer.UserID, viewer.IsStaff))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, paymentHandleResponseOf(result.Payment))
}

func (a *API) listPayments(c echo.Context) error {
	query := payments.BuildListQuery(viewerOf(c), nil)

	if raw := c.QueryParam("borrowing_id"); raw != "" {
		borrowingID, err := uuid.Parse(raw)
		if err != nil {
			return errors.Join(ErrInvalidRequest, err)
		}
		query.BorrowingID = &borrowingID
	}

	result, err := a.handlers.ListPayments.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponseOf(result.Items, paymentResponseOf))
}

func (a *API) paymentDetail(c echo.Context) error {
	paymentID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	payment, err := a.handlers.PaymentDetail.Handle(c.Request().Context(), payments.BuildDetailQuery(viewerOf(c), paymentID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, paymentResponseOf(payment))
}

func (a *API) linkChannel(c echo.Context) error {
	var req linkChannelRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	result, err := a.handlers.LinkChannel.Handle(c.Request().Context(), linkchannel.BuildCommand(viewerOf(c).UserID, req.ChannelID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, channelResponse{UserID: result.Link.UserID, ChannelID: result.Link.ChannelID})
}

func (a *API) scanOverdue(c echo.Context) error {
	result, err := a.handlers.ScanOverdue.Handle(c.Request().Context(), scanoverdue.BuildCommand(a.clock()))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, scanResponse{
		Overdue:  result.Overdue,
		Notified: result.Notified,
		Skipped:  result.Skipped,
		AllClear: result.AllClear,
	})
}

// webhook completes payments confirmed by the checkout provider. Events that confirm nothing are
// acknowledged and ignored.
func (a *API) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	event, err := a.handlers.Webhooks.ParseWebhook(payload, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		if a.logger != nil {
			a.logger.Warn(logMsgWebhookRejected, shell.LogAttrError, err.Error())
		}

		return err
	}

	if !event.CompletesPayment() {
		return c.NoContent(http.StatusOK)
	}

	if _, err := a.handlers.CompletePayment.Handle(c.Request().Context(), completepayment.BuildCommand(event.SessionID, a.clock())); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
