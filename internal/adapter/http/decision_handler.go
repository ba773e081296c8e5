package http

import (
	"net/http"

	"loanfund-backend/internal/usecase/lifecycle"

	"github.com/labstack/echo/v4"
)

type DecisionHandler struct{ uc *lifecycle.Usecase }

func NewDecisionHandler(uc *lifecycle.Usecase) *DecisionHandler { return &DecisionHandler{uc: uc} }

type decideReq struct {
	AdminID  string `json:"admin_id" validate:"required,hex32"`
	Action   string `json:"action"   validate:"required,oneof=approve reject"`
	Reason   string `json:"reason"`
	Override bool   `json:"override"`
}

func (h *DecisionHandler) DecideLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Decide(c.Request().Context(), lifecycle.DecideInput{
		LoanID:   loanID,
		AdminID:  req.AdminID,
		Action:   lifecycle.Action(req.Action),
		Reason:   req.Reason,
		Override: req.Override,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
