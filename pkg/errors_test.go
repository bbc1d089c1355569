package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_ToHTTPError(t *testing.T) {
	cause := errors.New("dynamodb timeout")
	appErr := NewDomainError("INTERNAL_ERROR", "An internal error occurred", cause, http.StatusInternalServerError)

	body := appErr.ToHTTPError()
	if body.Code != "INTERNAL_ERROR" || body.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Message == cause.Error() {
		t.Fatalf("cause must not leak into message")
	}
	if !errors.Is(appErr, cause) {
		t.Fatalf("expected unwrap to expose cause")
	}
}

func TestAppError_DefaultStatus(t *testing.T) {
	appErr := &AppError{Code: "X", Message: "x"}
	if got := appErr.ToHTTPError().Status; got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
