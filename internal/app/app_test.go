package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/db"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
)

var (
	testRouter   *gin.Engine
	testPool     *pgxpool.Pool
	testRecorder *events.Recorder
)

// TestMain runs the HTTP flows against a real Postgres. Without TEST_DB_DSN
// only the unit tests of this package run.
func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("Unable to apply schema: %v", err)
	}

	dir, err := os.MkdirTemp("", "class-booking-media")
	if err != nil {
		log.Fatalf("Unable to create storage dir: %v", err)
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		log.Fatalf("Unable to init storage: %v", err)
	}

	testRecorder = &events.Recorder{}
	container, err := NewContainer(Config{
		DBPool:     testPool,
		JWTSecret:  "integration-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4,
		Logger:     logger.Discard(),
		Publisher:  testRecorder,
		Storage:    store,
	})
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	testRouter = container.Router

	code := m.Run()

	testPool.Close()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN not set")
	}
}

func clearTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE
		public.tournament_matches, public.tournament_participants, public.tournaments,
		public.credit_transactions, public.credit_accounts, public.bookings,
		public.class_instances, public.class_templates, public.media_files,
		public.venues, public.organization_members, public.organizations, public.users CASCADE`)
	require.NoError(t, err)
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	w := executeRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "password123",
		"display_name": email,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = executeRequest(http.MethodPost, "/v1/auth/login", map[string]any{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		AccessToken string `json:"access_token"`
	}](t, w).AccessToken
}

type idResponse struct {
	ID string `json:"id"`
}

// setupBusiness onboards an organization and schedules one paid class three
// days out. It returns the owner token, organization ID and class ID.
func setupBusiness(t *testing.T) (string, string, string) {
	t.Helper()
	owner := registerAndLogin(t, "owner@example.com")

	w := executeRequest(http.MethodPost, "/v1/organizations/onboard", map[string]any{
		"name":     "Padel Club",
		"timezone": "Europe/Madrid",
		"venue":    map[string]any{"name": "Court Hall"},
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	org := decode[struct {
		Organization idResponse `json:"organization"`
		VenueID      *string    `json:"venue_id"`
	}](t, w)
	require.NotNil(t, org.VenueID)

	w = executeRequest(http.MethodPost, "/v1/class-templates", map[string]any{
		"organization_id":           org.Organization.ID,
		"venue_id":                  *org.VenueID,
		"name":                      "Americano Night",
		"duration_minutes":          90,
		"capacity":                  8,
		"price_credits":             10,
		"cancellation_window_hours": 24,
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	template := decode[idResponse](t, w)

	start := time.Now().Add(72 * time.Hour).Truncate(time.Minute).UTC()
	w = executeRequest(http.MethodPost, "/v1/class-instances", map[string]any{
		"template_id": template.ID,
		"start_time":  start,
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	class := decode[idResponse](t, w)

	return owner, org.Organization.ID, class.ID
}

func TestHealthz(t *testing.T) {
	requireDB(t)
	w := executeRequest(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookAndCancelWithCredits(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgID, classID := setupBusiness(t)
	member := registerAndLogin(t, "member@example.com")

	// No credits yet.
	w := executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	assert.Equal(t, http.StatusPaymentRequired, w.Code, w.Body.String())

	w = executeRequest(http.MethodPost, "/v1/credits/purchase", map[string]any{
		"organization_id": orgID,
		"amount":          50,
	}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 50, decode[struct {
		Balance int `json:"balance"`
	}](t, w).Balance)

	w = executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, w)
	assert.Equal(t, "confirmed", booked.Status)

	w = executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	assert.Equal(t, http.StatusConflict, w.Code, "second booking of the same class")

	balance := func() int {
		w := executeRequest(http.MethodGet, "/v1/credits/balance?organization_id="+orgID, nil, member)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[struct {
			Balance int `json:"balance"`
		}](t, w).Balance
	}
	assert.Equal(t, 40, balance())

	w = executeRequest(http.MethodGet, "/v1/bookings/"+booked.ID+"/cancellation", nil, member)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	preview := decode[struct {
		IsFree        bool `json:"is_free"`
		RefundPercent int  `json:"refund_percent"`
		RefundCredits int  `json:"refund_credits"`
	}](t, w)
	assert.True(t, preview.IsFree)
	assert.Equal(t, 100, preview.RefundPercent)
	assert.Equal(t, 10, preview.RefundCredits)

	w = executeRequest(http.MethodPost, "/v1/bookings/"+booked.ID+"/cancel", nil, member)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 50, balance())

	w = executeRequest(http.MethodPost, "/v1/bookings/"+booked.ID+"/cancel", nil, member)
	assert.Equal(t, http.StatusConflict, w.Code, "already cancelled")
}

func TestPublicScheduleAndPermissions(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgID, classID := setupBusiness(t)
	stranger := registerAndLogin(t, "stranger@example.com")

	day := tz.FormatDate(time.Now().Add(72*time.Hour), tz.LoadOrUTC("Europe/Madrid"))
	w := executeRequest(http.MethodGet, fmt.Sprintf("/v1/organizations/%s/schedule?date=%s", orgID, day), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	schedule := decode[struct {
		Timezone string       `json:"timezone"`
		Classes  []idResponse `json:"classes"`
	}](t, w)
	assert.Equal(t, "Europe/Madrid", schedule.Timezone)
	require.NotEmpty(t, schedule.Classes)
	assert.Equal(t, classID, schedule.Classes[0].ID)

	// Calendar management stays with the business.
	w = executeRequest(http.MethodPost, "/v1/class-instances/"+classID+"/cancel", nil, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(http.MethodGet, "/v1/class-instances/"+classID+"/bookings", nil, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClassCancellationRefundsBookers(t *testing.T) {
	requireDB(t)
	clearTables(t)

	owner, orgID, classID := setupBusiness(t)
	member := registerAndLogin(t, "member@example.com")

	w := executeRequest(http.MethodPost, "/v1/credits/purchase", map[string]any{"organization_id": orgID, "amount": 10}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = executeRequest(http.MethodPost, "/v1/class-instances/"+classID+"/cancel", nil, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[struct {
		CancelledBookings int `json:"cancelled_bookings"`
	}](t, w).CancelledBookings)

	w = executeRequest(http.MethodGet, "/v1/credits/balance?organization_id="+orgID, nil, member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decode[struct {
		Balance int `json:"balance"`
	}](t, w).Balance)

	assert.Contains(t, testRecorder.Keys(), events.ClassCancelled)

	// Cancelling again re-runs the refund cascade and finds nothing left.
	w = executeRequest(http.MethodPost, "/v1/class-instances/"+classID+"/cancel", nil, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, decode[struct {
		CancelledBookings int `json:"cancelled_bookings"`
	}](t, w).CancelledBookings)

	w = executeRequest(http.MethodGet, "/v1/credits/balance?organization_id="+orgID, nil, member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decode[struct {
		Balance int `json:"balance"`
	}](t, w).Balance)
}

func TestCancelSurvivesDriftedSeatCounter(t *testing.T) {
	requireDB(t)
	clearTables(t)
	ctx := context.Background()

	_, orgID, classID := setupBusiness(t)
	member := registerAndLogin(t, "member@example.com")

	w := executeRequest(http.MethodPost, "/v1/credits/purchase", map[string]any{"organization_id": orgID, "amount": 10}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookingID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID

	_, err := testPool.Exec(ctx, `UPDATE public.class_instances SET booked_count = 0 WHERE id = $1`, classID)
	require.NoError(t, err)

	w = executeRequest(http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", nil, member)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var booked int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT booked_count FROM public.class_instances WHERE id = $1`, classID).Scan(&booked))
	assert.Zero(t, booked)
}

func TestDeactivatedBusinessIsNotBookable(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgID, classID := setupBusiness(t)
	member := registerAndLogin(t, "member@example.com")
	w := executeRequest(http.MethodPost, "/v1/credits/purchase", map[string]any{"organization_id": orgID, "amount": 10}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, err := testPool.Exec(context.Background(), `UPDATE public.organizations SET is_active = false WHERE id = $1`, orgID)
	require.NoError(t, err)

	w = executeRequest(http.MethodPost, "/v1/bookings", map[string]any{"class_instance_id": classID}, member)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
