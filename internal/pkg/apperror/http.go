package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// ToHTTP maps an error chain to the response sent to API clients.
// Unknown errors never leak their text.
func ToHTTP(err error) *HTTPError {
	if err == nil {
		return &HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = statusFor(appErr.Kind)
		}
		msg := appErr.Message
		if appErr.Kind == KindStorageFailure {
			msg = "storage unavailable"
		}
		return &HTTPError{
			Status:  status,
			Code:    string(appErr.Kind),
			Message: msg,
		}
	}

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    string(KindInternal),
		Message: "internal server error",
	}
}
