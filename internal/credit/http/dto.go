package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/credit"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
)

type AccountResponse struct {
	OrganizationID   string     `json:"organization_id"`
	OrganizationName string     `json:"organization_name"`
	Balance          int        `json:"balance"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func NewAccountResponse(a *credit.Account) AccountResponse {
	return AccountResponse{
		OrganizationID:   a.OrganizationID,
		OrganizationName: a.OrganizationName,
		Balance:          a.Balance,
		UpdatedAt:        a.UpdatedAt,
	}
}

type TransactionResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Amount         int       `json:"amount"`
	Kind           string    `json:"kind"`
	BookingID      *string   `json:"booking_id"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewTransactionResponse(t *credit.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		OrganizationID: t.OrganizationID,
		Amount:         t.Amount,
		Kind:           t.Kind,
		BookingID:      t.BookingID,
		Note:           t.Note,
		CreatedAt:      t.CreatedAt,
	}
}

// EntryResponse is a freshly written ledger entry with the resulting balance.
type EntryResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Balance     int                 `json:"balance"`
}

type BalanceRequest struct {
	OrganizationID string `form:"organization_id" binding:"required,uuid"`
}

type ListTransactionsRequest struct {
	request.ListParams
	OrganizationID string `form:"organization_id" binding:"required,uuid"`
	UserID         string `form:"user_id" binding:"omitempty,uuid"`
	Kind           string `form:"kind" binding:"omitempty,oneof=purchase booking refund adjustment"`
}

type PurchaseRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Amount         int    `json:"amount" binding:"required,min=1,max=200"`
}

type AdjustRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	UserID         string `json:"user_id" binding:"required,uuid"`
	Amount         int    `json:"amount" binding:"required"`
	Note           string `json:"note" binding:"required,max=500"`
}
