package order

import (
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

var (
	ErrEmptyCart = apperror.New(
		apperror.KindEmptyCart,
		"cart cannot be empty",
	)

	ErrInvalidCustomer = apperror.New(
		apperror.KindInvalidCustomer,
		"invalid customer details",
	)

	ErrInvalidLine = apperror.New(
		apperror.KindInvalidQuantity,
		"order lines need a positive price and quantity",
	)

	ErrOrderNotFound = apperror.New(
		apperror.KindNotFound,
		"order not found",
	)

	ErrInvalidStatus = apperror.New(
		apperror.KindInvalidInput,
		"status must be one of Pending, Processing, Completed, Cancelled",
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.KindInvalidState,
		"invalid status transition",
	)
)
