package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
	"github.com/stockpilotai/stockpilot/internal/ws"
)

// Defaults applied to plan requests that omit them.
const (
	defaultHorizonHours = 72
	maxPlanAlerts       = 100
)

// PlanHandler serves the planning endpoints.
type PlanHandler struct {
	planner      PlanService
	actions      ActionService
	hub          *ws.Hub
	log          *logrus.Logger
	restaurantID string
	autopilot    bool
}

// NewPlanHandler creates a PlanHandler. restaurantID is the default used
// when requests omit one; autopilot enables auto-execution of eligible
// actions right after planning.
func NewPlanHandler(planner PlanService, actions ActionService, hub *ws.Hub, log *logrus.Logger, restaurantID string, autopilot bool) *PlanHandler {
	return &PlanHandler{
		planner:      planner,
		actions:      actions,
		hub:          hub,
		log:          log,
		restaurantID: restaurantID,
		autopilot:    autopilot,
	}
}

// planRequest is the body for POST /agent/plan and /agent/command.
type planRequest struct {
	Alerts       []models.Alert   `json:"alerts"`
	Inventory    []map[string]any `json:"inventory"`
	RestaurantID string           `json:"restaurant_id"`
	HorizonHours int              `json:"horizon_hours"`
	Command      string           `json:"command"`
}

func (r *planRequest) toDomain(defaultRestaurant string) domain.PlanRequest {
	req := domain.PlanRequest{
		Alerts:       r.Alerts,
		Inventory:    r.Inventory,
		RestaurantID: r.RestaurantID,
		HorizonHours: r.HorizonHours,
		Command:      r.Command,
	}
	if req.RestaurantID == "" {
		req.RestaurantID = defaultRestaurant
	}
	if req.HorizonHours <= 0 {
		req.HorizonHours = defaultHorizonHours
	}
	return req
}

// Plan handles POST /agent/plan: generate a prioritized action queue from
// the submitted alerts and register it for lifecycle processing.
func (h *PlanHandler) Plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if len(req.Alerts) > maxPlanAlerts {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "too many alerts in one plan request")
		return
	}

	plan := h.planner.GeneratePlan(c.Request.Context(), req.toDomain(h.restaurantID))
	h.registerPlan(plan)

	resp := gin.H{"plan": plan}
	if h.autopilot && len(plan.ActionQueue) > 0 {
		resp["auto_run"] = h.actions.AutoApproveAndExecute(plan.ActionQueue, "autopilot")
	}

	c.JSON(http.StatusOK, resp)
}

// Command handles POST /agent/command: resolve a natural-language operator
// command ("fix top 3 alerts") into proposed actions. Autopilot never runs
// for commands; an operator is already in the loop.
func (h *PlanHandler) Command(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Command == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "command is required")
		return
	}
	if len(req.Alerts) > maxPlanAlerts {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "too many alerts in one plan request")
		return
	}

	plan := h.planner.GeneratePlanFromCommand(c.Request.Context(), req.toDomain(h.restaurantID))
	h.registerPlan(plan)

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// registerPlan stores the planned actions in the lifecycle store and tells
// dashboard clients about them.
func (h *PlanHandler) registerPlan(plan *agent.Plan) {
	if len(plan.ActionQueue) == 0 {
		return
	}
	h.actions.StoreActions(plan.ActionQueue)
	h.hub.Broadcast(ws.EventActionsProposed, plan)
}
