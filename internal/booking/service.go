package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/cancellation"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
)

type CreateRequest struct {
	UserID          string
	ClassInstanceID string
	PaymentMethod   PaymentMethod
}

// Preview is what a cancellation would refund right now.
type Preview struct {
	cancellation.Info
	RefundCredits int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Roster(ctx context.Context, classID string) ([]*Booking, error)
	// ListMine returns the caller's bookings for one view, deduplicated per class
	// and grouped by business-local day.
	ListMine(ctx context.Context, userID, view string) ([]DayGroup, error)
	Confirm(ctx context.Context, id string) (*Booking, error)
	// Cancel applies the refund policy for the booker, or a full refund when a
	// business manager cancels.
	Cancel(ctx context.Context, id string, byManager bool) (*Booking, error)
	CancellationPreview(ctx context.Context, id string) (*Preview, error)
	GrantFreeCancel(ctx context.Context, id string, until *time.Time) (*Booking, error)
	CancelAllForClass(ctx context.Context, classID string) (int, error)
	ExpirePending(ctx context.Context, ttl time.Duration) (int, error)
	CompleteFinished(ctx context.Context) (int64, error)
}

type service struct {
	repo         Repository
	classService classinstance.Service
	orgService   organization.Service
	publisher    events.Publisher
	grace        time.Duration
	now          func() time.Time
}

func NewService(repo Repository, classService classinstance.Service, orgService organization.Service, publisher events.Publisher) Service {
	return &service{
		repo:         repo,
		classService: classService,
		orgService:   orgService,
		publisher:    publisher,
		grace:        DefaultGrace,
		now:          time.Now,
	}
}

func eventData(b *Booking) map[string]any {
	return map[string]any{
		"booking_id":        b.ID,
		"class_instance_id": b.ClassInstanceID,
		"user_id":           b.UserID,
		"organization_id":   b.OrganizationID,
		"status":            b.Status,
		"payment_method":    b.PaymentMethod,
		"price_credits":     b.PriceCredits,
		"class_start":       b.ClassStart,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	method := req.PaymentMethod
	if method == "" {
		method = PaymentCredits
	}
	if !method.Valid() {
		return nil, ErrInvalidPayment
	}

	class, err := s.classService.GetByID(ctx, req.ClassInstanceID)
	if err != nil {
		return nil, err
	}
	if err := class.Bookable(s.now()); err != nil {
		return nil, err
	}
	// Classes of a deactivated business are hidden along with it.
	if _, err := s.orgService.GetByID(ctx, class.OrganizationID); err != nil {
		return nil, err
	}
	if class.SeatsLeft() == 0 {
		return nil, ErrClassFull
	}
	if method == PaymentCheckout && class.PriceCredits == 0 {
		return nil, ErrCheckoutNotAllowed
	}

	b := &Booking{
		ClassInstanceID: class.ID,
		UserID:          req.UserID,
		PaymentMethod:   method,
		PriceCredits:    class.PriceCredits,
		Status:          StatusConfirmed,
	}
	if method == PaymentCheckout {
		b.Status = StatusPending
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.classService.InvalidateSchedule(ctx, class.OrganizationID)

	created, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.BookingCreated, eventData(created))
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Roster(ctx context.Context, classID string) ([]*Booking, error) {
	if _, err := s.classService.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, Filter{ClassInstanceID: classID, SortBy: "created_at", SortOrder: "ASC"})
	return items, err
}

func (s *service) ListMine(ctx context.Context, userID, view string) ([]DayGroup, error) {
	if view == "" {
		view = ViewUpcoming
	}
	items, _, err := s.repo.List(ctx, Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	items = LatestPerClass(items)
	now := s.now()

	switch view {
	case ViewUpcoming:
		upcoming, _ := Partition(items, now, s.grace)
		return GroupByDay(upcoming, now, true), nil
	case ViewHistory:
		_, history := Partition(items, now, s.grace)
		return GroupByDay(history, now, false), nil
	case ViewCancelled:
		return GroupByDay(FilterByStatus(items, StatusCancelled), now, false), nil
	case ViewPending:
		return GroupByDay(FilterByStatus(items, StatusPending), now, true), nil
	}
	return nil, ErrInvalidView
}

func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Confirm(ctx, id); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.BookingConfirmed, eventData(b))
	return b, nil
}

// refundFor returns the percent and credits returned when b is cancelled now.
// Checkout payments are refunded by the payment provider, so no credits move.
func refundFor(b *Booking, percent int) int {
	if b.PaymentMethod != PaymentCredits {
		return 0
	}
	return cancellation.RefundAmount(b.PriceCredits, percent)
}

func (s *service) policy(b *Booking) cancellation.Policy {
	return cancellation.Policy{
		ClassStart:      b.ClassStart,
		WindowHours:     b.WindowHours,
		FreeCancelUntil: b.FreeCancelUntil,
	}
}

func checkActive(b *Booking) error {
	switch {
	case b.Status == StatusCancelled:
		return ErrAlreadyCancelled
	case !b.Status.Active():
		return ErrNotCancellable
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, id string, byManager bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkActive(b); err != nil {
		return nil, err
	}

	now := s.now()
	cmd := CancelCommand{BookingID: id, At: now}
	if byManager {
		cmd.Reason = ReasonManager
		cmd.RefundPercent = cancellation.RefundFull
	} else {
		if !now.Before(b.ClassEnd) {
			return nil, ErrNotCancellable
		}
		cmd.Reason = ReasonUser
		cmd.RefundPercent = cancellation.Compute(now, s.policy(b)).RefundPercent
	}
	cmd.Refund = refundFor(b, cmd.RefundPercent)

	return s.applyCancel(ctx, b, cmd)
}

func (s *service) applyCancel(ctx context.Context, b *Booking, cmd CancelCommand) (*Booking, error) {
	if err := s.repo.Cancel(ctx, cmd); err != nil {
		return nil, err
	}
	s.classService.InvalidateSchedule(ctx, b.OrganizationID)

	cancelled, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	data := eventData(cancelled)
	data["reason"] = cmd.Reason
	data["refund_percent"] = cmd.RefundPercent
	data["refunded_credits"] = cmd.Refund
	events.Emit(ctx, s.publisher, events.BookingCancelled, data)
	return cancelled, nil
}

func (s *service) CancellationPreview(ctx context.Context, id string) (*Preview, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkActive(b); err != nil {
		return nil, err
	}

	info := cancellation.Compute(s.now(), s.policy(b))
	return &Preview{Info: info, RefundCredits: refundFor(b, info.RefundPercent)}, nil
}

// GrantFreeCancel lets the booker cancel with a full refund until the given time.
// A nil until revokes the privilege.
func (s *service) GrantFreeCancel(ctx context.Context, id string, until *time.Time) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkActive(b); err != nil {
		return nil, err
	}
	if until != nil {
		u := until.UTC()
		if !u.After(s.now()) || u.After(b.ClassEnd) {
			return nil, ErrInvalidFreeCancel
		}
		until = &u
	}

	if err := s.repo.SetFreeCancelUntil(ctx, id, until); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// CancelAllForClass refunds every active booking of a cancelled class in full.
// It keeps going past individual failures and reports them together.
func (s *service) CancelAllForClass(ctx context.Context, classID string) (int, error) {
	active, err := s.repo.ActiveForClass(ctx, classID)
	if err != nil {
		return 0, err
	}

	var errs []error
	n := 0
	for _, b := range active {
		cmd := CancelCommand{
			BookingID:     b.ID,
			Reason:        ReasonClass,
			RefundPercent: cancellation.RefundFull,
			Refund:        refundFor(b, cancellation.RefundFull),
			At:            s.now(),
		}
		if _, err := s.applyCancel(ctx, b, cmd); err != nil {
			if errors.Is(err, ErrAlreadyCancelled) {
				continue
			}
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (s *service) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.repo.ExpirePending(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	orgs := map[string]bool{}
	for _, id := range ids {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			logger.FromContext(ctx).Warn("load expired booking failed", slog.String("booking_id", id), logger.Err(err))
			continue
		}
		orgs[b.OrganizationID] = true
		events.Emit(ctx, s.publisher, events.BookingExpired, eventData(b))
	}
	for orgID := range orgs {
		s.classService.InvalidateSchedule(ctx, orgID)
	}
	return len(ids), nil
}

func (s *service) CompleteFinished(ctx context.Context) (int64, error) {
	return s.repo.CompleteFinished(ctx, s.now())
}
