package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/scholarflow-api/internal/models"
	"github.com/synapse-edu/scholarflow-api/internal/service"
	appErrors "github.com/synapse-edu/scholarflow-api/pkg/errors"
	"github.com/synapse-edu/scholarflow-api/pkg/response"
)

// LicenseHandler wires the medical leave intake flow to HTTP routes.
type LicenseHandler struct {
	leaves  *service.LeaveService
	exports *service.ExportService
}

// NewLicenseHandler constructs a new LicenseHandler.
func NewLicenseHandler(leaves *service.LeaveService, exports *service.ExportService) *LicenseHandler {
	return &LicenseHandler{leaves: leaves, exports: exports}
}

// Extract godoc
// @Summary Extract leave fields from an uploaded document
// @Tags Licenses
// @Accept multipart/form-data
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param file formData file true "Leave document (pdf/jpg/jpeg/png)"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/licenses/extract [post]
func (h *LicenseHandler) Extract(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	// Document bytes stay in memory only; they are never written to disk.
	document, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}

	record, err := h.leaves.ExtractDocument(c.Request.Context(), fileHeader.Filename, document)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Persist a reviewed leave record and run substitute matching
// @Tags Licenses
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param payload body map[string]interface{} true "Reviewed leave fields"
// @Success 201 {object} response.Envelope
// @Router /organizations/{orgId}/licenses [post]
func (h *LicenseHandler) Create(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	result, err := h.leaves.Create(c.Request.Context(), c.Param("orgId"), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List leave records
// @Tags Licenses
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param national_id query string false "Filter by professor national id"
// @Param unresolved query bool false "Filter records with unresolved dates"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (created_at,start_date,professor_name)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	filter := h.buildFilter(c)
	records, pagination, err := h.leaves.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get leave record detail
// @Tags Licenses
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Leave record ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/licenses/{id} [get]
func (h *LicenseHandler) Get(c *gin.Context) {
	record, err := h.leaves.Get(c.Request.Context(), c.Param("orgId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Update godoc
// @Summary Apply reviewed corrections to a leave record
// @Tags Licenses
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Leave record ID"
// @Param payload body service.UpdateLeaveRequest true "Corrected leave fields"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/licenses/{id} [put]
func (h *LicenseHandler) Update(c *gin.Context) {
	var req service.UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	record, err := h.leaves.Update(c.Request.Context(), c.Param("orgId"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export the leave register as CSV or PDF
// @Tags Licenses
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param format query string false "Export format (csv/pdf), defaults to csv"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/licenses/export [get]
func (h *LicenseHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	filter := h.buildFilter(c)
	result, err := h.exports.Generate(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"id":         result.ID,
		"url":        result.URL,
		"format":     result.Format,
		"row_count":  result.RowCount,
		"expires_at": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a generated export via signed token
// @Tags Licenses
// @Param token path string true "Signed download token"
// @Success 200
// @Router /export/{token} [get]
func (h *LicenseHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	_, relPath, _, err := h.exports.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "invalid or expired download token"))
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	mimeType := "text/csv"
	if strings.EqualFold(filepath.Ext(relPath), ".pdf") {
		mimeType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mimeType, file, nil)
}

func (h *LicenseHandler) buildFilter(c *gin.Context) models.LeaveFilter {
	filter := models.LeaveFilter{
		OrganizationID: c.Param("orgId"),
		NationalID:     strings.TrimSpace(c.Query("national_id")),
		SortBy:         c.Query("sort"),
		SortOrder:      c.Query("order"),
	}
	if unresolved := c.Query("unresolved"); unresolved != "" {
		switch strings.ToLower(unresolved) {
		case "true":
			val := true
			filter.Unresolved = &val
		case "false":
			val := false
			filter.Unresolved = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}
