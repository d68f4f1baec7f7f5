package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/errs"
)

const maxUploadSize = 10 << 20

// Uploader stores a file and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	uploader  Uploader
}

func newUploadHandler(uploader Uploader) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		uploader:  uploader,
	}
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// uploadImage stores the multipart "file" field; the returned URL goes into image_url
// @Summary Upload image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "Only image uploads are allowed"
// @Router /api/uploads [post]
func (h uploadHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.uploader == nil {
			h.responder.WriteError(w, errs.NewNotConfiguredError("File storage not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("upload", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingFieldsError("file"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			h.responder.WriteError(w, errs.NewInvalidFieldError("file", "Only image uploads are allowed"))
			return
		}

		url, err := h.uploader.Upload(r.Context(), header.Filename, contentType, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		event := h.logger.Info().Str("url", url).Int64("size", header.Size)
		if admin := ctxGetAdmin(r.Context()); admin != nil {
			event = event.Str("admin", admin.Email)
		}
		event.Msg("image uploaded")
		h.responder.WriteJSONStatus(w, http.StatusCreated, UploadResponse{Success: true, URL: url})
	}
}
