package http

import (
	"net/http"

	"loanfund-backend/internal/usecase/lifecycle"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct{ uc *lifecycle.Usecase }

func NewPaymentHandler(uc *lifecycle.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type recordPaymentReq struct {
	MemberID string  `json:"member_id" validate:"omitempty,hex32"`
	AdminID  string  `json:"admin_id"  validate:"omitempty,hex32"`
	Amount   float64 `json:"amount"    validate:"required,gt=0,dec2"`
	Memo     string  `json:"memo"`
}

func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.RecordPayment(c.Request().Context(), lifecycle.PaymentInput{
		LoanID:   loanID,
		MemberID: req.MemberID,
		Amount:   decimal.NewFromFloat(req.Amount),
		Memo:     req.Memo,
		AdminID:  req.AdminID,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
