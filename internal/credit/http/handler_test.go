package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/credit"
)

type stubCredits struct {
	credit.Service
	purchased []int
}

func (s *stubCredits) Purchase(_ context.Context, userID, orgID string, amount int) (*credit.Transaction, error) {
	s.purchased = append(s.purchased, amount)
	return &credit.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: orgID,
		Amount:         amount,
		Kind:           credit.KindPurchase,
		BalanceAfter:   amount,
	}, nil
}

func TestPurchaseAmountBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	orgID := uuid.NewString()

	tests := []struct {
		name   string
		amount int
		code   int
	}{
		{"zero", 0, http.StatusBadRequest},
		{"negative", -5, http.StatusBadRequest},
		{"minimum", credit.MinPurchase, http.StatusCreated},
		{"maximum", credit.MaxPurchase, http.StatusCreated},
		{"over the maximum", credit.MaxPurchase + 1, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubCredits{}
			r := gin.New()
			as := func(c *gin.Context) {
				auth.SetUserID(c, "buyer")
				c.Next()
			}
			RegisterRoutes(r.Group("/v1"), NewHandler(svc, nil), as)

			body := fmt.Sprintf(`{"organization_id":%q,"amount":%d}`, orgID, tt.amount)
			req := httptest.NewRequest(http.MethodPost, "/v1/credits/purchase", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code == http.StatusCreated {
				assert.Equal(t, []int{tt.amount}, svc.purchased)
				assert.Contains(t, w.Body.String(), fmt.Sprintf(`"balance":%d`, tt.amount))
			} else {
				assert.Empty(t, svc.purchased)
			}
		})
	}
}
