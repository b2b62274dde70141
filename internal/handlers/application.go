// internal/handlers/application.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/services"
	"github.com/DDP16/se-jobs-pipeline/internal/store"
	"github.com/DDP16/se-jobs-pipeline/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// POST /v1/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req services.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	app, err := h.applicationService.CreateApplication(c.Request.Context(), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, app)
}

// GET /v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	params := services.ApplicationSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if status := c.Query("status"); status != "" {
		params.Status = &status
	}
	if jobIDStr := c.Query("job_id"); jobIDStr != "" {
		jobID, err := uuid.Parse(jobIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid job_id", nil)
			return
		}
		params.JobID = &jobID
	}
	if candidateIDStr := c.Query("candidate_id"); candidateIDStr != "" {
		candidateID, err := uuid.Parse(candidateIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid candidate_id", nil)
			return
		}
		params.CandidateID = &candidateID
	}

	result, err := h.applicationService.ListApplications(c.Request.Context(), params)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponseWithMeta(c, result.Data, gin.H{
		"page":        result.Page,
		"limit":       result.Limit,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// GET /v1/applications/:id
//
// An employer's first open marks the application Viewed; the caller signals
// this with ?viewer=employer.
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	if c.Query("viewer") == "employer" {
		app, err := h.applicationService.MarkViewed(c.Request.Context(), id)
		if err != nil {
			respondApplicationError(c, err)
			return
		}
		utils.SuccessResponse(c, app)
		return
	}

	app, err := h.applicationService.GetApplication(c.Request.Context(), id)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	utils.SuccessResponse(c, app)
}

// GET /v1/applications/:id/transitions
func (h *ApplicationHandler) GetAllowedTransitions(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	options, err := h.applicationService.AllowedTargets(c.Request.Context(), id)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	utils.SuccessResponse(c, options)
}

// POST /v1/applications/:id/transitions
func (h *ApplicationHandler) ChangeStage(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.ChangeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	app, err := h.applicationService.ChangeStage(c.Request.Context(), id, &req)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	utils.SuccessResponse(c, app)
}

// GET /v1/applications/:id/history
func (h *ApplicationHandler) GetHistory(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	events, err := h.applicationService.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	utils.SuccessResponse(c, events)
}

func parseApplicationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondApplicationError maps service and engine errors onto the HTTP
// surface. Every engine error is a typed value, so the mapping is exact.
func respondApplicationError(c *gin.Context, err error) {
	var illegal *pipeline.IllegalTransitionError
	var missing *pipeline.MissingDataError
	var commit *pipeline.CommitError

	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.NotFoundResponse(c, "Application not found")
	case errors.Is(err, services.ErrConfirmationRequired):
		utils.ErrorResponse(c, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED",
			"This transition is irreversible and must be confirmed", nil)
	case errors.As(err, &illegal):
		utils.ConflictResponse(c, "ILLEGAL_TRANSITION", illegal.Error())
	case errors.As(err, &missing):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "MISSING_REQUIRED_DATA",
			missing.Error(), gin.H{"field": missing.Field})
	case errors.As(err, &commit):
		utils.ErrorResponse(c, http.StatusBadGateway, "COMMIT_FAILED", commit.Error(), nil)
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
