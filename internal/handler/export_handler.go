package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/service"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// CreateExportRequest selects the table and format to render.
type CreateExportRequest struct {
	Type   service.ExportType   `json:"type"`
	Format service.ExportFormat `json:"format"`
}

// ExportHandler exposes the export job endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Queue an export job
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body CreateExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.exports.Enqueue(c.Request.Context(), req.Type, req.Format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	job, err := h.exports.Get(c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export
// @Description The signed token is the capability; no bearer token needed.
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, relPath, err := h.exports.OpenByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
