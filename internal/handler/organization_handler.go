package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/scholarflow-api/internal/service"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
	"github.com/synapse-edu/scholarflow-api/pkg/response"
)

// OrganizationHandler wires organization services to HTTP routes.
type OrganizationHandler struct {
	organizations *service.OrganizationService
}

// NewOrganizationHandler constructs a new OrganizationHandler.
func NewOrganizationHandler(organizations *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

// List godoc
// @Summary List organizations
// @Tags Organizations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	organizations, err := h.organizations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, organizations, nil)
}

// Get godoc
// @Summary Get organization detail
// @Tags Organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) Get(c *gin.Context) {
	organization, err := h.organizations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, organization, nil)
}

// Create godoc
// @Summary Create organization
// @Tags Organizations
// @Accept json
// @Produce json
// @Param payload body service.CreateOrganizationRequest true "Organization payload"
// @Success 201 {object} response.Envelope
// @Router /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid organization payload"))
		return
	}
	organization, err := h.organizations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, organization)
}
