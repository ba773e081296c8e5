package http

import (
	"errors"
	"net/http"

	"loanfund-backend/internal/domain/loan"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// respondDomainError maps the error taxonomy to HTTP codes: eligibility
// failures are 422 with the full rule list, conflicts 409 (caller may retry
// once), validation 400, unknown records 404, everything else 500.
func respondDomainError(c echo.Context, err error) error {
	var eligErr *loan.EligibilityError
	if errors.As(err, &eligErr) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "member not eligible",
			Rules:   eligErr.FailedRules,
			Reasons: eligErr.Messages,
		})
	}

	var valErr *loan.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: valErr.Error()})
	}

	var conflictErr *loan.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: conflictErr.Error()})
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, loan.ErrAlreadyDecided), errors.Is(err, loan.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
