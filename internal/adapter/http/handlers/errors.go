package handlers

import (
	"errors"
	"net/http"

	"clearing_proposals/internal/usecase"
	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidRequest = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	errTokenInvalid   = pkg.NewDomainErrorSimple("TOKEN_INVALID", "Invalid or expired link", http.StatusUnauthorized)
)

// mapError turns usecase sentinels into the client envelope. Causes are kept
// on the AppError for logging and never serialized.
func mapError(err error) *pkg.AppError {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		return pkg.NewDomainError("INVALID_REQUEST", ve.Error(), err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidProposalID),
		errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrTokenInvalid):
		return pkg.NewDomainError("TOKEN_INVALID", "Invalid or expired link", err, http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrTokenAlreadyUsed):
		return pkg.NewDomainError("TOKEN_ALREADY_USED", "This link has already been used", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrNotAvailableForAcceptance):
		return pkg.NewDomainError("NOT_AVAILABLE_FOR_ACCEPTANCE", "Proposal is not available for acceptance", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrNoDepositRequired):
		return pkg.NewDomainError("NO_DEPOSIT_REQUIRED", "No deposit is required for this proposal", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrAlreadyPaid):
		return pkg.NewDomainError("ALREADY_PAID", "Deposit already paid", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrNotAccepted):
		return pkg.NewDomainError("NOT_ACCEPTED", "Proposal has not been accepted", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrNotExpired):
		return pkg.NewDomainError("NOT_EXPIRED", "Proposal link has not expired", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainError("INVALID_TRANSITION", "Invalid proposal status transition", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrProposalNotFound):
		return pkg.NewDomainError("PROPOSAL_NOT_FOUND", "Proposal not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrTemplateNotFound):
		return pkg.NewDomainError("TEMPLATE_NOT_FOUND", "Pricing template not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrSnapshotNotFound):
		return pkg.NewDomainError("SNAPSHOT_NOT_FOUND", "Snapshot not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrDependencyFailure):
		return pkg.NewDomainError("DEPENDENCY_FAILURE", "An upstream service failed, please retry", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
