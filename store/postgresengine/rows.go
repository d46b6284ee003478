package postgresengine

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine/internal/adapters"
)

func scanBook(rows adapters.DBRows) (core.Book, error) {
	var (
		id       string
		cover    string
		dailyFee string
		book     core.Book
	)

	if err := rows.Scan(&id, &book.Title, &book.Author, &cover, &book.Inventory, &dailyFee); err != nil {
		return core.Book{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return core.Book{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	fee, err := decimal.NewFromString(dailyFee)
	if err != nil {
		return core.Book{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	book.ID = parsedID
	book.Cover = core.Cover(cover)
	book.DailyFee = fee

	return book, nil
}

func scanBorrowing(rows adapters.DBRows) (core.Borrowing, error) {
	var (
		id, bookID, userID       string
		borrowDate, expectedDate string
		actualDate               sql.NullString
	)

	if err := rows.Scan(&id, &bookID, &userID, &borrowDate, &expectedDate, &actualDate); err != nil {
		return core.Borrowing{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	var borrowing core.Borrowing
	var parseErrs []error
	var err error

	borrowing.ID, err = uuid.Parse(id)
	parseErrs = append(parseErrs, err)
	borrowing.BookID, err = uuid.Parse(bookID)
	parseErrs = append(parseErrs, err)
	borrowing.UserID, err = uuid.Parse(userID)
	parseErrs = append(parseErrs, err)
	borrowing.BorrowDate, err = core.ParseDate(borrowDate)
	parseErrs = append(parseErrs, err)
	borrowing.ExpectedReturnDate, err = core.ParseDate(expectedDate)
	parseErrs = append(parseErrs, err)

	if actualDate.Valid {
		returned, parseErr := core.ParseDate(actualDate.String)
		parseErrs = append(parseErrs, parseErr)
		borrowing.ActualReturnDate = &returned
	}

	if joined := errors.Join(parseErrs...); joined != nil {
		return core.Borrowing{}, errors.Join(store.ErrScanningDBRowFailed, joined)
	}

	return borrowing, nil
}

func scanPayment(rows adapters.DBRows) (core.Payment, error) {
	var (
		id, borrowingID string
		paymentType     string
		status          string
		amount          string
		completedAt     sql.NullTime
		payment         core.Payment
	)

	err := rows.Scan(
		&id, &borrowingID, &paymentType, &status,
		&payment.SessionID, &payment.SessionURL, &amount, &payment.CreatedAt, &completedAt,
	)
	if err != nil {
		return core.Payment{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	var parseErrs []error

	payment.ID, err = uuid.Parse(id)
	parseErrs = append(parseErrs, err)
	payment.BorrowingID, err = uuid.Parse(borrowingID)
	parseErrs = append(parseErrs, err)
	payment.Amount, err = decimal.NewFromString(amount)
	parseErrs = append(parseErrs, err)

	if joined := errors.Join(parseErrs...); joined != nil {
		return core.Payment{}, errors.Join(store.ErrScanningDBRowFailed, joined)
	}

	payment.Type = core.PaymentType(paymentType)
	payment.Status = core.PaymentStatus(status)
	payment.CreatedAt = core.ToOccurredAt(payment.CreatedAt)

	if completedAt.Valid {
		at := core.ToOccurredAt(completedAt.Time)
		payment.CompletedAt = &at
	}

	return payment, nil
}

func scanChannelLink(rows adapters.DBRows) (store.ChannelLink, error) {
	var userID string
	var link store.ChannelLink

	if err := rows.Scan(&userID, &link.ChannelID); err != nil {
		return store.ChannelLink{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	parsed, err := uuid.Parse(userID)
	if err != nil {
		return store.ChannelLink{}, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	link.UserID = parsed

	return link, nil
}
