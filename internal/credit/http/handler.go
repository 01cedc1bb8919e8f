package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/credit"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

type CreditHandler struct {
	service    credit.Service
	orgService organization.Service
}

func NewHandler(service credit.Service, orgService organization.Service) *CreditHandler {
	return &CreditHandler{service: service, orgService: orgService}
}

func (h *CreditHandler) isManager(c *gin.Context, orgID string) (bool, bool) {
	ok, err := h.orgService.IsManagerOrAbove(c.Request.Context(), orgID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return false, false
	}
	return ok, true
}

// MyBalances lists the caller's balance at every business.
func (h *CreditHandler) MyBalances(c *gin.Context) {
	accounts, err := h.service.Balances(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = NewAccountResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *CreditHandler) Balance(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	a, err := h.service.Balance(c.Request.Context(), auth.GetUserID(c), req.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAccountResponse(a))
}

// ListTransactions returns the caller's ledger at one business.
// Managers may pass user_id to read a customer's ledger, or omit it to read all of them.
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	userID := auth.GetUserID(c)
	if req.UserID != userID {
		manager, ok := h.isManager(c, req.OrganizationID)
		if !ok {
			return
		}
		if manager {
			userID = req.UserID
		} else if req.UserID != "" {
			response.Error(c, apperror.ErrPermissionDenied)
			return
		}
	}

	items, total, err := h.service.ListTransactions(c.Request.Context(), credit.TransactionFilter{
		UserID:         userID,
		OrganizationID: req.OrganizationID,
		Kind:           req.Kind,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.MapPage(items, NewTransactionResponse, req.ListParams, total))
}

func (h *CreditHandler) Purchase(c *gin.Context) {
	var body PurchaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Purchase(c.Request.Context(), auth.GetUserID(c), body.OrganizationID, body.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, EntryResponse{Transaction: NewTransactionResponse(t), Balance: t.BalanceAfter})
}

// Adjust corrects a customer's balance.
// Access Control: Manager or above of the organization.
func (h *CreditHandler) Adjust(c *gin.Context) {
	var body AdjustRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	manager, ok := h.isManager(c, body.OrganizationID)
	if !ok {
		return
	}
	if !manager {
		response.Error(c, apperror.ErrPermissionDenied)
		return
	}

	t, err := h.service.Adjust(c.Request.Context(), auth.GetUserID(c), body.OrganizationID, body.UserID, body.Amount, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, EntryResponse{Transaction: NewTransactionResponse(t), Balance: t.BalanceAfter})
}
