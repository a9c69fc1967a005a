// file: internal/upload/r2.go
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// R2Credentials locate a Cloudflare R2 bucket
type R2Credentials struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// CDNBaseURL prefixes object keys in returned URLs. Defaults to the
	// account endpoint.
	CDNBaseURL string
}

// objectPutter is the part of the S3 client the backend uses
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Storage uploads images to Cloudflare R2 through its S3 API
type R2Storage struct {
	client  objectPutter
	bucket  string
	baseURL string
	opts    Options
	logger  *zap.Logger
}

// NewR2Storage creates an R2 backend
func NewR2Storage(ctx context.Context, creds R2Credentials, opts Options, logger *zap.Logger) (*R2Storage, error) {
	if creds.AccountID == "" || creds.AccessKeyID == "" || creds.AccessKeySecret == "" || creds.Bucket == "" {
		return nil, ErrMissingCredentials
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", creds.AccountID)
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	baseURL := creds.CDNBaseURL
	if baseURL == "" {
		baseURL = endpoint + "/" + creds.Bucket
	}

	logger.Info("R2 storage initialized", zap.String("bucket", creds.Bucket))
	return newR2Storage(client, creds.Bucket, baseURL, opts, logger), nil
}

func newR2Storage(client objectPutter, bucket, baseURL string, opts Options, logger *zap.Logger) *R2Storage {
	return &R2Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		logger:  logger,
	}
}

func (s *R2Storage) Validate(ctx context.Context, file *multipart.FileHeader) error {
	_, err := validate(ctx, file, s.opts.MaxFileSize)
	return err
}

func (s *R2Storage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	contentType, err := validate(ctx, file, s.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = s.opts.Folder
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	body := bytes.NewReader(buf.Bytes())

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate object key: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := path.Join(folder, id.String()+ext)

	err = retry(ctx, s.logger, file.Filename, s.opts.MaxRetries, s.opts.Timeout, func() error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		s.logger.Error("All upload attempts failed",
			zap.String("filename", file.Filename),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Info("📤 Image uploaded",
		zap.String("filename", file.Filename),
		zap.String("key", key),
		zap.Duration("duration", time.Since(start)))

	return &UploadResult{
		URL:      s.baseURL + "/" + key,
		PublicID: key,
		Format:   strings.TrimPrefix(ext, "."),
		Size:     buf.Len(),
	}, nil
}
