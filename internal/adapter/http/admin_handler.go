package http

import (
	"net/http"
	"strconv"

	"loanfund-backend/internal/domain/audit"
	"loanfund-backend/internal/usecase/lifecycle"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct{ uc *lifecycle.Usecase }

func NewAdminHandler(uc *lifecycle.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) RunSweep(c echo.Context) error {
	closed, err := h.uc.RunAutoCloseSweep(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	if closed == nil {
		closed = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"closed": closed})
}

func (h *AdminHandler) ListOverrideAudit(c echo.Context) error {
	f := audit.Filter{
		AdminID:  c.QueryParam("admin_id"),
		MemberID: c.QueryParam("member_id"),
		LoanID:   c.QueryParam("loan_id"),
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = n
	}
	entries, err := h.uc.ListOverrideAudit(c.Request().Context(), f)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}
