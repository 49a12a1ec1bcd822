package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/scholarflow-api/internal/middleware"
	"github.com/synapse-edu/scholarflow-api/internal/models"
	"github.com/synapse-edu/scholarflow-api/internal/service"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
	"github.com/synapse-edu/scholarflow-api/pkg/response"
)

// ProfessorHandler wires professor roster services to HTTP routes.
type ProfessorHandler struct {
	professors *service.ProfessorService
}

// NewProfessorHandler constructs a new ProfessorHandler.
func NewProfessorHandler(professors *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professors: professors}
}

// List godoc
// @Summary List professors
// @Tags Professors
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param search query string false "Search by name or national id"
// @Param subject query string false "Filter by taught subject"
// @Param available query bool false "Filter by availability"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (full_name,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	filter := models.ProfessorFilter{
		OrganizationID: c.Param("orgId"),
		Search:         strings.TrimSpace(c.Query("search")),
		Subject:        strings.TrimSpace(c.Query("subject")),
		SortBy:         c.Query("sort"),
		SortOrder:      c.Query("order"),
	}
	if available := c.Query("available"); available != "" {
		switch strings.ToLower(available) {
		case "true":
			val := true
			filter.Available = &val
		case "false":
			val := false
			filter.Available = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	professors, pagination, cacheHit, err := h.professors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, professors, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get professor detail
// @Tags Professors
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/professors/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	professor, err := h.professors.Get(c.Request.Context(), c.Param("orgId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Create godoc
// @Summary Register professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param payload body service.CreateProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Router /organizations/{orgId}/professors [post]
func (h *ProfessorHandler) Create(c *gin.Context) {
	var req service.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}
	professor, err := h.professors.Create(c.Request.Context(), c.Param("orgId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Update godoc
// @Summary Update professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Professor ID"
// @Param payload body service.UpdateProfessorRequest true "Professor payload"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/professors/{id} [put]
func (h *ProfessorHandler) Update(c *gin.Context) {
	var req service.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}
	professor, err := h.professors.Update(c.Request.Context(), c.Param("orgId"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

type availabilityRequest struct {
	Available *bool `json:"is_available" binding:"required"`
}

// SetAvailability godoc
// @Summary Toggle professor availability
// @Tags Professors
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Professor ID"
// @Param payload body availabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/professors/{id}/availability [put]
func (h *ProfessorHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "is_available is required"))
		return
	}
	professor, err := h.professors.SetAvailability(c.Request.Context(), c.Param("orgId"), c.Param("id"), *req.Available)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}
