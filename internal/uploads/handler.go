package uploads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"retail360-backend/internal/shared/server/middleware"
	"retail360-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the token-guarded upload routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.DELETE("/upload/:uploadId", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Err(c, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Err(c, http.StatusBadRequest, "No file uploaded", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Ingest(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		var procErr *ProcessingError
		switch {
		case errors.As(err, &procErr):
			respond.Err(c, http.StatusInternalServerError, "Failed to process data", procErr.Detail)
		case errors.Is(err, ErrOwnerNotFound):
			respond.Err(c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, ErrNoFile):
			respond.Err(c, http.StatusBadRequest, "No file uploaded", nil)
		default:
			respond.Err(c, http.StatusInternalServerError, "Failed to process data", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, mergeEngineResponse(res))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	recordID := c.Param("uploadId")

	list, err := h.Svc.Delete(c.Request.Context(), userID, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Msg(c, http.StatusNotFound, "Upload not found")
			return
		}
		respond.Msg(c, http.StatusInternalServerError, "Server Error")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"msg": "Upload deleted", "uploads": list})
}

// mergeEngineResponse flattens the engine's JSON object into the response body
// and adds the current upload list, matching the broker's wire contract.
func mergeEngineResponse(res IngestResult) map[string]any {
	merged := map[string]any{}
	if len(res.Engine) > 0 {
		if err := json.Unmarshal(res.Engine, &merged); err != nil {
			merged = map[string]any{"result": json.RawMessage(res.Engine)}
		}
	}
	merged["uploads"] = res.Uploads
	return merged
}
