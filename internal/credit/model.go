package credit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

// Transaction kinds matching the credit_kind enum.
const (
	KindPurchase   = "purchase"
	KindBooking    = "booking"
	KindRefund     = "refund"
	KindAdjustment = "adjustment"
)

// Purchase bounds per checkout.
const (
	MinPurchase = 1
	MaxPurchase = 200
)

var (
	ErrInsufficientCredits = apperror.New(http.StatusPaymentRequired, "insufficient credits")
	ErrInvalidPurchase     = apperror.New(http.StatusBadRequest, fmt.Sprintf("purchase amount must be between %d and %d credits", MinPurchase, MaxPurchase))
	ErrZeroAdjustment      = apperror.New(http.StatusBadRequest, "adjustment amount must not be zero")
	ErrNoteRequired        = apperror.New(http.StatusBadRequest, "a note is required for adjustments")
)

// Account is the balance of one user at one organization.
type Account struct {
	UserID           string
	OrganizationID   string
	OrganizationName string
	Balance          int
	UpdatedAt        *time.Time
}

// Transaction is one signed ledger entry. BalanceAfter is only set on entries
// written in the current request.
type Transaction struct {
	ID             string
	UserID         string
	OrganizationID string
	Amount         int
	Kind           string
	BookingID      *string
	Note           string
	CreatedAt      time.Time
	BalanceAfter   int
}

// TransactionFilter defines parameters for listing ledger entries.
type TransactionFilter struct {
	UserID         string
	OrganizationID string
	Kind           string
	Page           int
	PageSize       int
}
