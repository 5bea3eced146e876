package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/sproutify/sproutify-platform/internal/api/middleware"
	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/utils/response"
)

// 5 MB, matches the hosting service's unsigned-preset limit.
const maxUploadSize = 5 << 20

// ImageUploader pushes an image to the hosting service and returns its
// public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type UploadHandler struct {
	uploader ImageUploader
}

func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// UploadImage godoc
//	@Summary		Upload a product image
//	@Description	Accepts a multipart form with an "image" file and returns the hosted URL. Admin only.
//	@Tags			Upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Image file (max 5MB)"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorResponse	"Missing or oversized file"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		502		{object}	response.ErrorResponse	"Image host rejected the upload"
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *UploadHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			logger.Warn("Invalid upload form", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Invalid or oversized upload").WithError(err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			logger.Warn("Missing image file", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("An 'image' file is required").WithError(err))
			return
		}
		defer file.Close()

		url, err := h.uploader.Upload(r.Context(), file, header.Filename)
		if err != nil {
			logger.Error("Image upload failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Image uploaded", slog.String("filename", header.Filename), slog.String("url", url))
		response.Success(w, http.StatusCreated, map[string]string{"image": url})
	}
}
