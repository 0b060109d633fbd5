package controllers

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// maxUploadBytes caps a CSV upload to the local disk.
const maxUploadBytes = 32 << 20

// StorageController receives uploads for the local disk, standing in for
// the bucket a presigned URL points at. An upload under uploaded/ is parsed
// straight away, the way a bucket notification would trigger it.
type StorageController struct {
	disk    storage.Disk
	imports *services.ImportService
}

func NewStorageController(disk storage.Disk, imports *services.ImportService) *StorageController {
	return &StorageController{disk: disk, imports: imports}
}

// Upload handles PUT /storage/*.
func (c *StorageController) Upload(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if key == "" {
		response.Error(w, http.StatusNotFound, "File Name is missing!")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		response.Error(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	if err := c.disk.Put(r.Context(), key, body); err != nil {
		logger.WithCtx(r.Context()).Error("storage: upload failed", "key", key, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if strings.HasPrefix(key, services.UploadedPrefix) {
		if _, err := c.imports.ParseFile(r.Context(), key); err != nil {
			logger.WithCtx(r.Context()).Error("storage: parse after upload failed", "key", key, "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to process file")
			return
		}
	}
	response.Message(w, http.StatusOK, "File uploaded")
}
