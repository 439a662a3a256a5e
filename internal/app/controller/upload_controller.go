package controller

import (
	"errors"
	"net/http"

	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gamevault/storefront-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	uploader storage.ImageUploader
}

// NewUploadController accepts a nil uploader when object storage is not
// configured; requests then fail with 503.
func NewUploadController(uploader storage.ImageUploader) *UploadController {
	return &UploadController{
		uploader: uploader,
	}
}

type ProductImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// PresignProductImage returns a short lived URL the admin panel PUTs the
// image to
// POST /api/products/upload-url
func (ctrl *UploadController) PresignProductImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.uploader == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadUnavailable, "Image uploads are not configured")
		return
	}

	var req ProductImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid upload request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	upload, err := ctrl.uploader.PresignProductImage(c.Request.Context(), req.Filename, req.ContentType, req.Size)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrContentTypeNotAllowed):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		case errors.Is(err, storage.ErrFileTooLarge):
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Image exceeds the 5MB limit")
		default:
			log.Error("Failed to presign upload", err, map[string]interface{}{
				"filename": req.Filename,
			})
			apperrors.InternalError(c, "Failed to generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, upload)
}
