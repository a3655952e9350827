package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fastmeet-service/internal/fastmeet"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/telemetry"
	"fastmeet-service/internal/ws"
)

// MeetHandler exposes the meet lifecycle endpoints. All role checks happen in
// the controller; the handler only parses, maps errors and broadcasts.
type MeetHandler struct {
	controller *fastmeet.Controller
	hub        *ws.Hub
	audit      *telemetry.AuditEmitter
}

// NewMeetHandler constructs a MeetHandler.
func NewMeetHandler(controller *fastmeet.Controller, hub *ws.Hub, audit *telemetry.AuditEmitter) *MeetHandler {
	return &MeetHandler{controller: controller, hub: hub, audit: audit}
}

type stopRequest struct {
	Location  string     `json:"location"`
	Address   string     `json:"address"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// CreateMeet handles POST /meets.
func (h *MeetHandler) CreateMeet(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Name        string        `json:"name" binding:"required"`
		Description string        `json:"description"`
		MeetType    string        `json:"meet_type"`
		SubType     string        `json:"sub_type"`
		Tags        []string      `json:"tags"`
		Latitude    *float64      `json:"latitude" binding:"required"`
		Longitude   *float64      `json:"longitude" binding:"required"`
		Stops       []stopRequest `json:"stops"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stops := make([]models.MeetStop, 0, len(req.Stops))
	for _, s := range req.Stops {
		stops = append(stops, models.MeetStop{
			Location:  s.Location,
			Address:   s.Address,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}

	meet, err := h.controller.Create(c.Request.Context(), userID, fastmeet.CreateMeetInput{
		Name:        req.Name,
		Description: req.Description,
		MeetType:    req.MeetType,
		SubType:     req.SubType,
		Tags:        req.Tags,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Stops:       stops,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "meet_create", "meet created", meet.ID)
	c.JSON(http.StatusCreated, meet)
}

// ListMeets handles GET /meets.
func (h *MeetHandler) ListMeets(c *gin.Context) {
	meets, err := h.controller.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load meets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meets": meets})
}

// GetMeet handles GET /meets/:meet_id and returns the full MeetView for the
// authenticated viewer.
func (h *MeetHandler) GetMeet(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	view, err := h.controller.Load(c.Request.Context(), meetID, userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RequestJoin handles POST /meets/:meet_id/join. Distinct from CancelJoin on
// purpose: an ambiguous toggle could cancel an accepted participation.
func (h *MeetHandler) RequestJoin(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	participation, err := h.controller.RequestJoin(c.Request.Context(), meetID, userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastParticipation(models.EventJoinRequested, meetID, participation)
	h.emitAudit(c, "INFO", "join_request", "join requested", meetID)
	c.JSON(http.StatusCreated, participation)
}

// CancelJoin handles DELETE /meets/:meet_id/join.
func (h *MeetHandler) CancelJoin(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.controller.CancelJoin(c.Request.Context(), meetID, userID); err != nil {
		writeDomainError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "join_cancel", "join request canceled", meetID)
	c.Status(http.StatusNoContent)
}

// Leave handles POST /meets/:meet_id/leave.
func (h *MeetHandler) Leave(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.controller.Leave(c.Request.Context(), meetID, userID); err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastParticipation(models.EventParticipantLeft, meetID, models.Participation{MeetID: meetID, UserID: userID})
	h.emitAudit(c, "INFO", "leave", "participant left", meetID)
	c.Status(http.StatusNoContent)
}

// AcceptRequest handles POST /meets/:meet_id/requests/:participation_id/accept.
func (h *MeetHandler) AcceptRequest(c *gin.Context) {
	meetID, participationID, ok := meetAndParticipationParams(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	participation, err := h.controller.AcceptRequest(c.Request.Context(), meetID, userID, participationID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastParticipation(models.EventJoinAccepted, meetID, participation)
	h.emitAudit(c, "INFO", "accept_request", "join request accepted", meetID)
	c.JSON(http.StatusOK, participation)
}

// DeclineRequest handles POST /meets/:meet_id/requests/:participation_id/decline.
func (h *MeetHandler) DeclineRequest(c *gin.Context) {
	meetID, participationID, ok := meetAndParticipationParams(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	participation, err := h.controller.DeclineRequest(c.Request.Context(), meetID, userID, participationID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastParticipation(models.EventJoinDeclined, meetID, participation)
	h.emitAudit(c, "INFO", "decline_request", "join request declined", meetID)
	c.Status(http.StatusNoContent)
}

// DeleteMeet handles DELETE /meets/:meet_id.
func (h *MeetHandler) DeleteMeet(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.controller.Delete(c.Request.Context(), meetID, userID); err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastMeetDeleted(meetID)
	h.emitAudit(c, "INFO", "meet_delete", "meet deleted", meetID)
	c.Status(http.StatusNoContent)
}

func (h *MeetHandler) emitAudit(c *gin.Context, level, action, text string, meetID int) {
	id := int64(meetID)
	h.audit.Emit(c.Request.Context(), level, action, text, requestIDFromContext(c), userIDFromContext(c), &id)
}

func meetIDParam(c *gin.Context) (int, bool) {
	meetID, err := strconv.Atoi(c.Param("meet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meet id"})
		return 0, false
	}
	return meetID, true
}

func meetAndParticipationParams(c *gin.Context) (int, int, bool) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return 0, 0, false
	}
	participationID, err := strconv.Atoi(c.Param("participation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participation id"})
		return 0, 0, false
	}
	return meetID, participationID, true
}
