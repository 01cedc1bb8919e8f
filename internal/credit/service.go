package credit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
)

type Service interface {
	Balance(ctx context.Context, userID, orgID string) (*Account, error)
	Balances(ctx context.Context, userID string) ([]*Account, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, int, error)
	// Purchase records credits bought through the external checkout.
	Purchase(ctx context.Context, userID, orgID string, amount int) (*Transaction, error)
	// Adjust applies a signed manual correction by a business manager.
	Adjust(ctx context.Context, actorID, orgID, userID string, amount int, note string) (*Transaction, error)
}

type service struct {
	repo       Repository
	orgService organization.Service
}

func NewService(repo Repository, orgService organization.Service) Service {
	return &service{repo: repo, orgService: orgService}
}

func (s *service) Balance(ctx context.Context, userID, orgID string) (*Account, error) {
	org, err := s.orgService.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetAccount(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	a.OrganizationName = org.Name
	return a, nil
}

func (s *service) Balances(ctx context.Context, userID string) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, userID)
}

func (s *service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, int, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *service) Purchase(ctx context.Context, userID, orgID string, amount int) (*Transaction, error) {
	if amount < MinPurchase || amount > MaxPurchase {
		return nil, ErrInvalidPurchase
	}
	if _, err := s.orgService.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	t := &Transaction{
		UserID:         userID,
		OrganizationID: orgID,
		Amount:         amount,
		Kind:           KindPurchase,
	}
	if err := s.repo.Apply(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Adjust(ctx context.Context, actorID, orgID, userID string, amount int, note string) (*Transaction, error) {
	note = strings.TrimSpace(note)
	if amount == 0 {
		return nil, ErrZeroAdjustment
	}
	if note == "" {
		return nil, ErrNoteRequired
	}
	if _, err := s.orgService.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	t := &Transaction{
		UserID:         userID,
		OrganizationID: orgID,
		Amount:         amount,
		Kind:           KindAdjustment,
		Note:           note,
	}
	if err := s.repo.Apply(ctx, t); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("credit adjustment",
		slog.String("organization_id", orgID),
		slog.String("user_id", userID),
		slog.String("actor_id", actorID),
		slog.Int("amount", amount),
		slog.Int("balance", t.BalanceAfter),
	)
	return t, nil
}
