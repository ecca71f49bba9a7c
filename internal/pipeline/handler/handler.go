// Package handler exposes the pipeline over HTTP. Handlers parse and
// validate transport DTOs, call the service and translate typed errors
// through httpkit; no business rules live here.
package handler

import (
	"net/http"

	"lead_crm_backend/internal/pipeline/domain"
	"lead_crm_backend/internal/pipeline/service"
	"lead_crm_backend/internal/pipeline/transport"
	"lead_crm_backend/platform/httpkit"
	"lead_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// roleManager gates the bulk operations: reassigning a batch or
	// rewriting acquisition costs is not an agent-level action.
	roleManager = "manager"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator

	// assignDefaults applies when a round-robin request leaves the
	// overwrite flag unset.
	assignDefaults domain.AssignmentRules
}

func New(svc *service.Service, val *validator.Validator, assignDefaults domain.AssignmentRules) *Handler {
	return &Handler{svc: svc, val: val, assignDefaults: assignDefaults}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/stale", h.ListStale)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/call-outcome", h.RecordCallOutcome)
	rg.PATCH("/:id/target", h.SetTarget)
	rg.POST("/:id/enroll", h.SetEnrolled)
	rg.POST("/:id/recover", h.Recover)
	rg.GET("/:id/activity", h.ListActivity)
	managed := rg.Group("", httpkit.RequireRole(roleManager))
	managed.PUT("/:id/cost", h.SetCost)
	managed.POST("/assign", h.AssignSingle)
	managed.POST("/assign/round-robin", h.AssignRoundRobin)
	managed.POST("/assign/round-robin/preview", h.PreviewRoundRobin)
	managed.POST("/costs/distribute", h.DistributeEqual)
}

// RegisterCampaignRoutes mounts the campaign-scoped cost operations.
// Distribution rewrites every lead's cost, so it carries the manager guard;
// the read-only preview and coverage reports do not.
func (h *Handler) RegisterCampaignRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/costs/distribute", httpkit.RequireRole(roleManager), h.DistributeByPeriod)
	rg.GET("/:id/costs/preview", h.PreviewByPeriod)
	rg.GET("/:id/coverage", h.Coverage)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		AssignedAgentID: req.AssignedAgentID,
		CampaignID:      req.CampaignID,
		CourseID:        req.CourseID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) RecordCallOutcome(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.RecordCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.RecordCallOutcome(c.Request.Context(), id, domain.CallOutcome(req.Outcome), req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) SetTarget(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.SetTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.SetTarget(c.Request.Context(), id, req.IsTarget, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) SetEnrolled(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	lead, err := h.svc.SetEnrolled(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Recover(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.RecoverLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	lead, err := h.svc.RecoverLead(c.Request.Context(), id, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) ListStale(c *gin.Context) {
	stale, err := h.svc.ListStale(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToStaleListResponse(stale))
}

func (h *Handler) ListActivity(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListActivity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToActivityListResponse(entries))
}

func (h *Handler) SetCost(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.SetCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.SetFixedCost(c.Request.Context(), id, req.AmountCents)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) AssignSingle(c *gin.Context) {
	var req transport.AssignSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	results, err := h.svc.AssignSingle(c.Request.Context(), req.LeadIDs, req.AgentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AssignmentResponse{
		Assigned: len(results),
		PerAgent: map[uuid.UUID]int{req.AgentID: len(results)},
	})
}

func (h *Handler) AssignRoundRobin(c *gin.Context) {
	var req transport.RoundRobinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	results, counts, err := h.svc.AssignRoundRobin(c.Request.Context(),
		req.LeadIDs, req.AgentIDs, h.assignmentRules(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AssignmentResponse{Assigned: len(results), PerAgent: counts})
}

func (h *Handler) PreviewRoundRobin(c *gin.Context) {
	var req transport.RoundRobinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	counts, err := h.svc.PreviewRoundRobin(c.Request.Context(),
		req.LeadIDs, req.AgentIDs, h.assignmentRules(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AssignmentPreviewResponse{PerAgent: counts})
}

func (h *Handler) DistributeEqual(c *gin.Context) {
	var req transport.DistributeEqualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	allocations, err := h.svc.DistributeEqual(c.Request.Context(), req.LeadIDs, req.TotalCents)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AllocationResponse{Allocations: allocations, TotalCents: req.TotalCents})
}

func (h *Handler) DistributeByPeriod(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	allocations, err := h.svc.DistributeByPeriod(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AllocationResponse{Allocations: allocations, TotalCents: sumAllocations(allocations)})
}

func (h *Handler) PreviewByPeriod(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	allocations, err := h.svc.PreviewByPeriod(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AllocationResponse{Allocations: allocations, TotalCents: sumAllocations(allocations)})
}

func (h *Handler) Coverage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	report, err := h.svc.CampaignCoverage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCoverageResponse(report))
}

func (h *Handler) assignmentRules(req transport.RoundRobinRequest) domain.AssignmentRules {
	rules := h.assignDefaults
	if req.Overwrite != nil {
		rules.Overwrite = *req.Overwrite
	}
	return rules
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func sumAllocations(allocations map[uuid.UUID]int64) int64 {
	var total int64
	for _, cents := range allocations {
		total += cents
	}
	return total
}
