package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type ImportController struct {
	service *services.ImportService
}

func NewImportController(service *services.ImportService) *ImportController {
	return &ImportController{service: service}
}

// SignedURL handles GET /import?fileName=...
func (c *ImportController) SignedURL(w http.ResponseWriter, r *http.Request) {
	u, err := c.service.SignedUploadURL(r.Context(), r.URL.Query().Get("fileName"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"signedUrl": u})
}

// Events handles POST /import/events: an S3 "object created" notification
// for the import bucket, delivered by a bucket webhook or a local tool.
func (c *ImportController) Events(w http.ResponseWriter, r *http.Request) {
	var ev events.S3Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid S3 event")
		return
	}

	results, err := c.service.HandleEvent(r.Context(), ev)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			response.FromError(w, err)
			return
		}
		logger.WithCtx(r.Context()).Error("import: event failed", "error", err, "files", len(results))
		response.Error(w, http.StatusInternalServerError, "Failed to process file")
		return
	}
	response.Message(w, http.StatusOK, "File processed successfully")
}
