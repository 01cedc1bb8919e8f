package classinstance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/classtemplate"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
)

// CreateRequest schedules a class from a template. The start is either an absolute
// StartTime or a business-local Date and Time; nil overrides fall back to the template.
type CreateRequest struct {
	TemplateID              string
	VenueID                 *string
	Name                    *string
	StartTime               *time.Time
	Date                    string
	Time                    string
	DurationMinutes         *int
	Capacity                *int
	PriceCredits            *int
	CancellationWindowHours *int
}

// UpdateRequest reschedules or edits a class. Setting any start field moves the class
// and keeps its duration unless DurationMinutes is also given.
type UpdateRequest struct {
	VenueID                 *string
	Name                    *string
	StartTime               *time.Time
	Date                    string
	Time                    string
	DurationMinutes         *int
	Capacity                *int
	PriceCredits            *int
	CancellationWindowHours *int
}

// ListQuery is a Filter plus an optional business-local day.
type ListQuery struct {
	Filter
	Date string
}

// BookingCanceller cancels, with a full refund, every active booking of a class.
// It must be idempotent: bookings already cancelled are skipped.
type BookingCanceller interface {
	CancelAllForClass(ctx context.Context, classID string) (int, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ClassInstance, error)
	GetByID(ctx context.Context, id string) (*ClassInstance, error)
	List(ctx context.Context, q ListQuery) ([]*ClassInstance, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ClassInstance, error)
	// Cancel marks the class cancelled and cancels its active bookings. Calling it
	// again on a cancelled class retries the booking cascade. The int is the number
	// of bookings cancelled by this call.
	Cancel(ctx context.Context, id string) (*ClassInstance, int, error)
	// SetBookingCanceller wires the booking cascade. Called once during startup,
	// since the booking service depends on this one.
	SetBookingCanceller(b BookingCanceller)
	Delete(ctx context.Context, id string) error
	Schedule(ctx context.Context, orgID, date string) (*DaySchedule, error)
	InvalidateSchedule(ctx context.Context, orgID string)
}

type service struct {
	repo            Repository
	orgService      organization.Service
	templateService classtemplate.Service
	venueService    venue.Service
	bookings        BookingCanceller
	cache           cache.Cache
	publisher       events.Publisher
	now             func() time.Time
}

func NewService(
	repo Repository,
	orgService organization.Service,
	templateService classtemplate.Service,
	venueService venue.Service,
	c cache.Cache,
	publisher events.Publisher,
) Service {
	return &service{
		repo:            repo,
		orgService:      orgService,
		templateService: templateService,
		venueService:    venueService,
		cache:           c,
		publisher:       publisher,
		now:             time.Now,
	}
}

// ScheduleNamespace is the cache namespace holding an organization's day schedules.
func ScheduleNamespace(orgID string) string {
	return "schedule:" + orgID
}

func (s *service) InvalidateSchedule(ctx context.Context, orgID string) {
	if err := s.cache.Invalidate(ctx, ScheduleNamespace(orgID)); err != nil {
		logger.FromContext(ctx).Warn("invalidate schedule cache failed", slog.String("organization_id", orgID), logger.Err(err))
	}
}

// resolveStart turns the request's start fields into a UTC instant.
func resolveStart(abs *time.Time, date, clock string, loc *time.Location) (*time.Time, error) {
	if abs != nil {
		t := abs.UTC()
		return &t, nil
	}
	if date == "" && clock == "" {
		return nil, nil
	}
	if date == "" || clock == "" {
		return nil, ErrInvalidDate
	}
	t, err := tz.FromBusinessLocal(date, clock, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func validateNumbers(durationMinutes, capacity, price, window int) error {
	switch {
	case durationMinutes < classtemplate.MinDurationMinutes || durationMinutes > classtemplate.MaxDurationMinutes:
		return ErrInvalidDuration
	case capacity < classtemplate.MinCapacity || capacity > classtemplate.MaxCapacity:
		return ErrInvalidCapacity
	case price < classtemplate.MinPriceCredits || price > classtemplate.MaxPriceCredits:
		return ErrInvalidPrice
	case window < classtemplate.MinWindowHours || window > classtemplate.MaxWindowHours:
		return ErrInvalidWindow
	}
	return nil
}

func (s *service) checkVenue(ctx context.Context, orgID string, venueID *string) error {
	if venueID == nil {
		return nil
	}
	v, err := s.venueService.GetByID(ctx, *venueID)
	if err != nil {
		return err
	}
	if v.OrganizationID != orgID {
		return ErrVenueMismatch
	}
	return nil
}

func valueOr(p *int, fallback int) int {
	if p != nil {
		return *p
	}
	return fallback
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*ClassInstance, error) {
	tpl, err := s.templateService.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, ErrTemplateInactive
	}

	loc, err := s.orgService.Location(ctx, tpl.OrganizationID)
	if err != nil {
		return nil, err
	}
	start, err := resolveStart(req.StartTime, req.Date, req.Time, loc)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, ErrStartRequired
	}
	if !start.After(s.now()) {
		return nil, ErrStartInPast
	}

	duration := valueOr(req.DurationMinutes, tpl.DurationMinutes)
	c := &ClassInstance{
		OrganizationID:          tpl.OrganizationID,
		TemplateID:              tpl.ID,
		VenueID:                 tpl.VenueID,
		Name:                    tpl.Name,
		StartTime:               *start,
		EndTime:                 start.Add(time.Duration(duration) * time.Minute),
		Capacity:                valueOr(req.Capacity, tpl.Capacity),
		PriceCredits:            valueOr(req.PriceCredits, tpl.PriceCredits),
		CancellationWindowHours: valueOr(req.CancellationWindowHours, tpl.CancellationWindowHours),
		Status:                  StatusScheduled,
	}
	if req.VenueID != nil {
		c.VenueID = req.VenueID
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		c.Name = strings.TrimSpace(*req.Name)
	}

	if err := validateNumbers(duration, c.Capacity, c.PriceCredits, c.CancellationWindowHours); err != nil {
		return nil, err
	}
	if err := s.checkVenue(ctx, c.OrganizationID, c.VenueID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.InvalidateSchedule(ctx, c.OrganizationID)
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*ClassInstance, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, q ListQuery) ([]*ClassInstance, int, error) {
	if q.Date != "" {
		if q.OrganizationID == "" {
			return nil, 0, ErrInvalidDate
		}
		loc, err := s.orgService.Location(ctx, q.OrganizationID)
		if err != nil {
			return nil, 0, err
		}
		start, end, err := tz.DayRange(q.Date, loc)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		q.From, q.To = &start, &end
	}
	return s.repo.List(ctx, q.Filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*ClassInstance, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusCancelled {
		return nil, ErrClassCancelled
	}
	if c.HasStarted(s.now()) {
		return nil, ErrClassStarted
	}

	loc, err := s.orgService.Location(ctx, c.OrganizationID)
	if err != nil {
		return nil, err
	}
	start, err := resolveStart(req.StartTime, req.Date, req.Time, loc)
	if err != nil {
		return nil, err
	}

	duration := int(c.EndTime.Sub(c.StartTime) / time.Minute)
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if start != nil {
		if !start.After(s.now()) {
			return nil, ErrStartInPast
		}
		c.StartTime = *start
	}
	c.EndTime = c.StartTime.Add(time.Duration(duration) * time.Minute)

	if req.VenueID != nil {
		if *req.VenueID == "" {
			c.VenueID = nil
		} else {
			c.VenueID = req.VenueID
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		c.Name = strings.TrimSpace(*req.Name)
	}
	c.Capacity = valueOr(req.Capacity, c.Capacity)
	c.PriceCredits = valueOr(req.PriceCredits, c.PriceCredits)
	c.CancellationWindowHours = valueOr(req.CancellationWindowHours, c.CancellationWindowHours)

	if err := validateNumbers(duration, c.Capacity, c.PriceCredits, c.CancellationWindowHours); err != nil {
		return nil, err
	}
	if c.Capacity < c.BookedCount {
		return nil, ErrCapacityBelowBooked
	}
	if err := s.checkVenue(ctx, c.OrganizationID, c.VenueID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.InvalidateSchedule(ctx, c.OrganizationID)
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetBookingCanceller(b BookingCanceller) {
	s.bookings = b
}

func (s *service) Cancel(ctx context.Context, id string) (*ClassInstance, int, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if c.Status != StatusCancelled {
		if !s.now().Before(c.EndTime) {
			return nil, 0, ErrClassStarted
		}
		if err := s.repo.SetStatus(ctx, id, StatusCancelled); err != nil {
			return nil, 0, err
		}
		c.Status = StatusCancelled

		s.InvalidateSchedule(ctx, c.OrganizationID)
		events.Emit(ctx, s.publisher, events.ClassCancelled, map[string]any{
			"class_instance_id": c.ID,
			"organization_id":   c.OrganizationID,
			"start_time":        c.StartTime,
			"booked_count":      c.BookedCount,
		})
	}

	if s.bookings == nil {
		return c, 0, nil
	}
	n, err := s.bookings.CancelAllForClass(ctx, c.ID)
	if err != nil {
		logger.FromContext(ctx).Error("cancel class bookings failed",
			slog.String("class_instance_id", c.ID), slog.Int("cancelled", n), logger.Err(err))
		return c, n, err
	}
	return c, n, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.repo.HasActiveBookings(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return ErrHasActiveBookings
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateSchedule(ctx, c.OrganizationID)
	return nil
}

// Schedule lists the scheduled classes of one business-local day, served from the cache
// when possible.
func (s *service) Schedule(ctx context.Context, orgID, date string) (*DaySchedule, error) {
	org, err := s.orgService.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	loc := tz.LoadOrUTC(org.Timezone)
	if date == "" {
		date = tz.FormatDate(s.now(), loc)
	}

	var cached DaySchedule
	err = s.cache.Get(ctx, ScheduleNamespace(orgID), date, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.FromContext(ctx).Warn("read schedule cache failed", slog.String("organization_id", orgID), logger.Err(err))
	}

	start, end, err := tz.DayRange(date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	classes, _, err := s.repo.List(ctx, Filter{
		OrganizationID: orgID,
		Status:         StatusScheduled,
		From:           &start,
		To:             &end,
	})
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []*ClassInstance{}
	}

	day := &DaySchedule{
		OrganizationID: orgID,
		Date:           date,
		Timezone:       loc.String(),
		Classes:        classes,
	}
	if err := s.cache.Set(ctx, ScheduleNamespace(orgID), date, day); err != nil {
		logger.FromContext(ctx).Warn("write schedule cache failed", slog.String("organization_id", orgID), logger.Err(err))
	}
	return day, nil
}
