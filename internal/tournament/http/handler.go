package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/class-booking-backend/internal/tournament"
)

type TournamentHandler struct {
	service      tournament.Service
	classService classinstance.Service
	orgService   organization.Service
}

func NewHandler(service tournament.Service, classService classinstance.Service, orgService organization.Service) *TournamentHandler {
	return &TournamentHandler{
		service:      service,
		classService: classService,
		orgService:   orgService,
	}
}

func (h *TournamentHandler) requireManager(c *gin.Context, orgID string) bool {
	ok, err := h.orgService.IsManagerOrAbove(c.Request.Context(), orgID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !ok {
		response.Error(c, apperror.ErrPermissionDenied)
		return false
	}
	return true
}

// managed loads the tournament and checks the caller manages its organization.
func (h *TournamentHandler) managed(c *gin.Context, id string) (*tournament.Tournament, bool) {
	t, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.requireManager(c, t.OrganizationID) {
		return nil, false
	}
	return t, true
}

func (h *TournamentHandler) managedByURI(c *gin.Context) (*tournament.Tournament, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}
	return h.managed(c, uri.ID)
}

func (h *TournamentHandler) writeState(c *gin.Context, id string) {
	st, err := h.service.GetState(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStateResponse(st))
}

// Create attaches a draft tournament to a class.
// Access Control: Manager or above of the class's organization.
func (h *TournamentHandler) Create(c *gin.Context) {
	var body CreateTournamentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	ctx := c.Request.Context()

	class, err := h.classService.GetByID(ctx, body.ClassInstanceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.requireManager(c, class.OrganizationID) {
		return
	}

	t, err := h.service.Create(ctx, tournament.CreateRequest{
		ClassInstanceID: body.ClassInstanceID,
		Name:            body.Name,
		PointsPerMatch:  body.PointsPerMatch,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTournamentResponse(t))
}

// Get returns the full widget state. Any signed in user may watch.
func (h *TournamentHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	h.writeState(c, uri.ID)
}

func (h *TournamentHandler) GetByClass(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	st, err := h.service.GetStateByClass(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStateResponse(st))
}

func (h *TournamentHandler) Delete(c *gin.Context) {
	t, ok := h.managedByURI(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), t.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TournamentHandler) AddParticipant(c *gin.Context) {
	t, ok := h.managedByURI(c)
	if !ok {
		return
	}

	var body AddParticipantRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.AddParticipant(c.Request.Context(), t.ID, tournament.AddParticipantRequest{
		UserID:      body.UserID,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewParticipantResponse(p))
}

func (h *TournamentHandler) RemoveParticipant(c *gin.Context) {
	var uri ParticipantURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	t, ok := h.managed(c, uri.ID)
	if !ok {
		return
	}

	if err := h.service.RemoveParticipant(c.Request.Context(), t.ID, uri.ParticipantID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import adds the confirmed bookers of the class as participants.
func (h *TournamentHandler) Import(c *gin.Context) {
	t, ok := h.managedByURI(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	added, err := h.service.ImportFromBookings(ctx, t.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	st, err := h.service.GetState(ctx, t.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Added: added, State: NewStateResponse(st)})
}

func (h *TournamentHandler) Start(c *gin.Context) {
	t, ok := h.managedByURI(c)
	if !ok {
		return
	}

	var body StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	st, err := h.service.Start(c.Request.Context(), t.ID, body.Rounds)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStateResponse(st))
}

func (h *TournamentHandler) RecordResult(c *gin.Context) {
	var uri MatchURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	t, ok := h.managed(c, uri.ID)
	if !ok {
		return
	}

	var body RecordResultRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.RecordMatchResult(c.Request.Context(), t.ID, uri.MatchID, *body.ScoreA, *body.ScoreB)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMatchResponse(m))
}

// Advance closes the current round, or the tournament after the last one.
func (h *TournamentHandler) Advance(c *gin.Context) {
	t, ok := h.managedByURI(c)
	if !ok {
		return
	}

	st, err := h.service.AdvanceRound(c.Request.Context(), t.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStateResponse(st))
}
