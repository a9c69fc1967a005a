// file: internal/upload/cloudinary.go
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStorage uploads images to Cloudinary
type CloudinaryStorage struct {
	client *cloudinary.Cloudinary
	opts   Options
	logger *zap.Logger
}

// NewCloudinaryStorage creates a Cloudinary backend from account credentials
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string, opts Options, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrMissingCredentials
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	logger.Info("Cloudinary storage initialized", zap.String("cloud_name", cloudName))
	return &CloudinaryStorage{client: cld, opts: opts, logger: logger}, nil
}

func (c *CloudinaryStorage) Validate(ctx context.Context, file *multipart.FileHeader) error {
	_, err := validate(ctx, file, c.opts.MaxFileSize)
	return err
}

func (c *CloudinaryStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	if _, err := validate(ctx, file, c.opts.MaxFileSize); err != nil {
		return nil, err
	}
	if folder == "" {
		folder = c.opts.Folder
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	unique := true
	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    &unique,
		UniqueFilename: &unique,
		ResourceType:   "image",
	}

	var result *uploader.UploadResult
	err = retry(ctx, c.logger, file.Filename, c.opts.MaxRetries, c.opts.Timeout, func() error {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return err
		}
		var opErr error
		result, opErr = c.client.Upload.Upload(ctx, src, params)
		if opErr == nil && result.Error.Message != "" {
			opErr = fmt.Errorf("cloudinary: %s", result.Error.Message)
		}
		return opErr
	})
	if err != nil {
		c.logger.Error("All upload attempts failed",
			zap.String("filename", file.Filename),
			zap.Int("max_retries", c.opts.MaxRetries),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	c.logger.Info("📤 Image uploaded",
		zap.String("filename", file.Filename),
		zap.String("public_id", result.PublicID),
		zap.Duration("duration", time.Since(start)))

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Format:   result.Format,
		Size:     result.Bytes,
	}, nil
}
