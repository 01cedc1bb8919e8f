package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
)

var (
	orgID     = uuid.NewString()
	bookingID = uuid.NewString()
	booker    = uuid.NewString()
	manager   = uuid.NewString()
	staff     = uuid.NewString()
	stranger  = uuid.NewString()
)

// stubOrgs grants roles in orgID only.
type stubOrgs struct {
	organization.Service
	managers map[string]bool
	staff    map[string]bool
}

func (s stubOrgs) IsManagerOrAbove(_ context.Context, org, user string) (bool, error) {
	return org == orgID && s.managers[user], nil
}

func (s stubOrgs) IsStaffOrAbove(_ context.Context, org, user string) (bool, error) {
	return org == orgID && (s.managers[user] || s.staff[user]), nil
}

// stubBookings serves one booking and remembers how it was cancelled.
type stubBookings struct {
	booking.Service
	cancels   []bool
	confirmed int
}

func (s *stubBookings) get() *booking.Booking {
	return &booking.Booking{
		ID:              bookingID,
		ClassInstanceID: uuid.NewString(),
		UserID:          booker,
		Status:          booking.StatusConfirmed,
		PaymentMethod:   booking.PaymentCredits,
		PriceCredits:    10,
		ClassStart:      time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		ClassEnd:        time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC),
		OrganizationID:  orgID,
		Timezone:        "UTC",
	}
}

func (s *stubBookings) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	if id != bookingID {
		return nil, booking.ErrNotFound
	}
	return s.get(), nil
}

func (s *stubBookings) Cancel(_ context.Context, _ string, byManager bool) (*booking.Booking, error) {
	s.cancels = append(s.cancels, byManager)
	b := s.get()
	percent := 50
	if byManager {
		percent = 100
	}
	b.Status = booking.StatusCancelled
	b.RefundPercent = &percent
	b.RefundedCredits = b.PriceCredits * percent / 100
	return b, nil
}

func (s *stubBookings) Confirm(_ context.Context, _ string) (*booking.Booking, error) {
	s.confirmed++
	return s.get(), nil
}

func newRouter(svc *stubBookings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orgs := stubOrgs{
		managers: map[string]bool{manager: true},
		staff:    map[string]bool{staff: true},
	}
	r := gin.New()
	// The X-User header stands in for a verified token.
	as := func(c *gin.Context) {
		auth.SetUserID(c, c.GetHeader("X-User"))
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, nil, orgs), as)
	return r
}

func call(r *gin.Engine, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-User", user)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCancelAccess(t *testing.T) {
	path := "/v1/bookings/" + bookingID + "/cancel"

	tests := []struct {
		name      string
		user      string
		code      int
		byManager bool
		refund    int
	}{
		{"stranger", stranger, http.StatusForbidden, false, 0},
		{"staff of the business", staff, http.StatusForbidden, false, 0},
		{"booker gets the policy refund", booker, http.StatusOK, false, 5},
		{"manager refunds in full", manager, http.StatusOK, true, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBookings{}
			w := call(newRouter(svc), http.MethodPost, path, tt.user)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				assert.Empty(t, svc.cancels, "denied callers must not reach the service")
				return
			}

			require.Equal(t, []bool{tt.byManager}, svc.cancels)
			var resp BookingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(booking.StatusCancelled), resp.Status)
			assert.Equal(t, tt.refund, resp.RefundedCredits)
		})
	}
}

func TestConfirmAccess(t *testing.T) {
	path := "/v1/bookings/" + bookingID + "/confirm"

	tests := []struct {
		name string
		user string
		code int
	}{
		{"booker cannot mark their own booking paid", booker, http.StatusForbidden},
		{"staff", staff, http.StatusForbidden},
		{"stranger", stranger, http.StatusForbidden},
		{"manager", manager, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBookings{}
			w := call(newRouter(svc), http.MethodPost, path, tt.user)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, 1, svc.confirmed)
			} else {
				assert.Zero(t, svc.confirmed)
			}
		})
	}
}

func TestGetBooking(t *testing.T) {
	r := newRouter(&stubBookings{})

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/v1/bookings/"+bookingID, booker).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/v1/bookings/"+bookingID, staff).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/v1/bookings/"+bookingID, stranger).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/v1/bookings/"+uuid.NewString(), booker).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/v1/bookings/not-a-uuid", booker).Code)
}
