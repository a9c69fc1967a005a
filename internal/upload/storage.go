// file: internal/upload/storage.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"recyclehub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Options tune every storage backend
type Options struct {
	MaxFileSize int64
	Timeout     time.Duration
	MaxRetries  int
	Folder      string
}

// DefaultOptions returns the limits used when configuration leaves them unset
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 10 * 1024 * 1024,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		Folder:      "submissions",
	}
}

// FileStorage stores proof images and hands back a durable URL. The ledger
// only ever sees that URL.
type FileStorage interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error)
	Validate(ctx context.Context, file *multipart.FileHeader) error
}

// UploadResult contains the result of a file upload
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Size     int    `json:"size"`
}

var (
	ErrDisabled           = errors.New("image uploads are disabled")
	ErrFileTooLarge       = errors.New("file size exceeds limit")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidExtension   = errors.New("invalid file extension")
	ErrUnableToOpenFile   = errors.New("unable to open file")
	ErrMissingCredentials = errors.New("upload credentials are missing")
	ErrUploadFailed       = errors.New("failed to upload file")
)

// allowedTypes maps each accepted image type to its extensions
var allowedTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/heic": {".heic", ".heif"},
}

// New builds the backend named by cfg.Provider. Provider "none" (or empty)
// returns ErrDisabled.
func New(ctx context.Context, cfg *config.UploadConfig, logger *zap.Logger) (FileStorage, error) {
	opts := DefaultOptions()
	if cfg.MaxFileSize > 0 {
		opts.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.Folder != "" {
		opts.Folder = cfg.Folder
	}

	switch strings.ToLower(cfg.Provider) {
	case "cloudinary":
		return NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, opts, logger)
	case "r2":
		return NewR2Storage(ctx, R2Credentials{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		}, opts, logger)
	case "", "none":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
	}
}

// validate checks size, sniffed content type and extension. It returns the
// accepted content type.
func validate(ctx context.Context, file *multipart.FileHeader, maxSize int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%w: no file", ErrUnableToOpenFile)
	}
	if file.Size > maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, file.Size, maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := http.DetectContentType(buffer[:n])
	// the sniffer has no signature for HEIC
	if contentType == "application/octet-stream" && slices.Contains(allowedTypes["image/heic"], ext) {
		contentType = "image/heic"
	}

	extensions, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	if !slices.Contains(extensions, ext) {
		return "", fmt.Errorf("%w: %q does not match %s", ErrInvalidExtension, ext, contentType)
	}
	return contentType, nil
}

// retry runs op with exponential backoff up to maxRetries extra attempts
func retry(ctx context.Context, logger *zap.Logger, filename string, maxRetries int, timeout time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = timeout / 2

	return backoff.RetryNotify(
		op,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx),
		func(err error, d time.Duration) {
			logger.Warn("Upload attempt failed",
				zap.String("filename", filename),
				zap.Error(err),
				zap.Duration("backoff", d))
		},
	)
}
