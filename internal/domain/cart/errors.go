package cart

import (
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

var (
	ErrInvalidQuantity = apperror.New(
		apperror.KindInvalidQuantity,
		"quantity must be between 1 and 10000",
	)

	ErrNegativeQuantity = apperror.New(
		apperror.KindInvalidQuantity,
		"quantity cannot be negative",
	)

	ErrInsufficientStock = apperror.New(
		apperror.KindInsufficientStock,
		"quantity exceeds available stock",
	)

	ErrProductRequired = apperror.New(
		apperror.KindInvalidInput,
		"product is required",
	)

	ErrItemNotFound = apperror.New(
		apperror.KindNotFound,
		"item not found in cart",
	)
)

func insufficientStock(stock int, merged bool) error {
	if merged {
		return apperror.Newf(apperror.KindInsufficientStock, "total quantity exceeds available stock (%d)", stock)
	}
	return apperror.Newf(apperror.KindInsufficientStock, "quantity exceeds available stock (%d)", stock)
}
