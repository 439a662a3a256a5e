package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gamevault/storefront-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUploader struct{}

func (fakeUploader) PresignProductImage(_ context.Context, filename, contentType string, size int64) (*storage.PresignedUpload, error) {
	if err := storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		return nil, err
	}
	if err := storage.ValidateFileSize(size, storage.MaxImageSize); err != nil {
		return nil, err
	}
	return &storage.PresignedUpload{
		UploadURL: "https://bucket.example.com/products/abc.png?sig=1",
		FileURL:   "https://cdn.example.com/products/abc.png",
		Key:       "products/abc.png",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func TestUploadController_PresignProductImage(t *testing.T) {
	env := setupControllerTest(t, controllerTestOptions{uploader: fakeUploader{}})

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
	}{
		{name: "png", body: gin.H{"filename": "cover.png", "contentType": "image/png", "size": 1024}, wantStatus: http.StatusOK},
		{name: "pdf", body: gin.H{"filename": "manual.pdf", "contentType": "application/pdf", "size": 1024}, wantStatus: http.StatusBadRequest, wantCode: "UPLOAD_INVALID_FILE_TYPE"},
		{name: "too large", body: gin.H{"filename": "huge.png", "contentType": "image/png", "size": storage.MaxImageSize + 1}, wantStatus: http.StatusBadRequest, wantCode: "UPLOAD_FILE_TOO_LARGE"},
		{name: "missing size", body: gin.H{"filename": "cover.png", "contentType": "image/png"}, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/products/upload-url", tt.body, env.adminToken)
			requireStatus(t, w, tt.wantStatus)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
				return
			}
			var upload storage.PresignedUpload
			decodeJSON(t, w, &upload)
			assert.Equal(t, "products/abc.png", upload.Key)
			assert.NotEmpty(t, upload.UploadURL)
		})
	}

	w := env.do(t, http.MethodPost, "/api/products/upload-url", tests[0].body, env.userToken)
	requireStatus(t, w, http.StatusForbidden)
}

func TestUploadController_Unconfigured(t *testing.T) {
	env := setupControllerTest(t)
	w := env.do(t, http.MethodPost, "/api/products/upload-url", gin.H{"filename": "a.png", "contentType": "image/png", "size": 1}, env.adminToken)
	requireStatus(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "UPLOAD_UNAVAILABLE", decodeError(t, w).Error)
}
