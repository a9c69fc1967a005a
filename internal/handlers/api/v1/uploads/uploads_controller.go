// ===============================
// FILE: internal/handlers/api/v1/uploads/uploads_controller.go
// ===============================

package uploads

import (
	"errors"
	"net/http"

	"recyclehub/internal/contextutils"
	"recyclehub/internal/response"
	"recyclehub/internal/services"
	"recyclehub/internal/upload"

	"go.uber.org/zap"
)

const formField = "image"

// UploadController stores proof images before a submission is created
type UploadController struct {
	storage         upload.FileStorage
	maxFileSize     int64
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewUploadController creates the controller. A nil storage answers every
// upload with 503.
func NewUploadController(
	storage upload.FileStorage,
	maxFileSize int64,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UploadController {
	if maxFileSize <= 0 {
		maxFileSize = upload.DefaultOptions().MaxFileSize
	}
	return &UploadController{
		storage:         storage,
		maxFileSize:     maxFileSize,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// UploadImage handles POST /api/v1/uploads (multipart field "image")
func (c *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if c.storage == nil {
		c.responseBuilder.WriteError(w, r, services.NewServiceUnavailableError("image uploads are not configured"))
		return
	}

	// headroom for the multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, c.maxFileSize+64*1024)
	if err := r.ParseMultipartForm(c.maxFileSize); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid multipart upload", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[formField]
	if len(files) == 0 {
		c.responseBuilder.WriteBadRequest(w, r, `missing "image" file`)
		return
	}

	userID := contextutils.GetUserID(r.Context())
	result, err := c.storage.Upload(r.Context(), files[0], "")
	if err != nil {
		c.responseBuilder.WriteError(w, r, uploadError(err))
		return
	}

	c.logger.Info("Proof image stored",
		zap.String("user_id", userID),
		zap.String("public_id", result.PublicID),
	)
	c.responseBuilder.WriteCreated(w, r, result)
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrInvalidContentType),
		errors.Is(err, upload.ErrInvalidExtension),
		errors.Is(err, upload.ErrUnableToOpenFile):
		return services.NewValidationError(err.Error(), err)
	case errors.Is(err, upload.ErrUploadFailed):
		unavailable := services.NewServiceUnavailableError("image storage is unavailable, please retry")
		unavailable.Cause = err
		return unavailable
	}
	return err
}
