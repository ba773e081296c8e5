package http

import (
	"net/http"

	"loanfund-backend/internal/usecase/loanrequest"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loanrequest.Usecase }

func NewLoanHandler(uc *loanrequest.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type submitLoanReq struct {
	MemberID string  `json:"member_id" validate:"required,hex32"`
	Amount   float64 `json:"amount"    validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) SubmitLoan(c echo.Context) error {
	var req submitLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Submit(c.Request().Context(), req.MemberID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) CheckEligibility(c echo.Context) error {
	memberID := c.Param("member_id")
	if !reHex32.MatchString(memberID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid member_id"})
	}
	res, err := h.uc.CheckEligibility(c.Request().Context(), memberID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) ComputeTerms(c echo.Context) error {
	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	balance, err := decimal.NewFromString(c.QueryParam("balance"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid balance"})
	}
	t, err := h.uc.ComputeTerms(amount, balance)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}
