package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"recyclehub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fileHeader round-trips content through a multipart form so the header can
// be opened like one from a real request
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  []byte
		max      int64
		wantType string
		wantErr  error
	}{
		{"png", "bottle.png", pngHeader, 1024, "image/png", nil},
		{"jpeg", "bottle.JPG", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), 1024, "image/jpeg", nil},
		{"heic by extension", "bottle.heic", []byte{0x00, 0x01, 0x02, 0x03, 0xfe}, 1024, "image/heic", nil},
		{"text", "notes.png", []byte("just some text"), 1024, "", ErrInvalidContentType},
		{"extension mismatch", "bottle.gif", pngHeader, 1024, "", ErrInvalidExtension},
		{"too large", "bottle.png", pngHeader, 4, "", ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validate(ctx, fileHeader(t, tt.filename, tt.content), tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got)
		})
	}

	_, err := validate(ctx, nil, 10)
	assert.ErrorIs(t, err, ErrUnableToOpenFile)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, &config.UploadConfig{Provider: "none"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = New(ctx, &config.UploadConfig{Provider: "cloudinary"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(ctx, &config.UploadConfig{Provider: "r2", R2AccountID: "acct"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(ctx, &config.UploadConfig{Provider: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}

type fakePutter struct {
	mu       sync.Mutex
	failures int
	calls    int
	bodies   []string
	inputs   []*s3.PutObjectInput
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.bodies = append(f.bodies, string(body))
	f.inputs = append(f.inputs, in)

	if f.calls <= f.failures {
		return nil, errors.New("503 slow down")
	}
	return &s3.PutObjectOutput{}, nil
}

func testOptions() Options {
	return Options{MaxFileSize: 1024, Timeout: 5 * time.Second, MaxRetries: 2, Folder: "submissions"}
}

func TestR2Storage_UploadRetriesWithFullBody(t *testing.T) {
	putter := &fakePutter{failures: 1}
	storage := newR2Storage(putter, "proofs", "https://cdn.example.com/", testOptions(), zap.NewNop())

	res, err := storage.Upload(context.Background(), fileHeader(t, "bottle.png", pngHeader), "")
	require.NoError(t, err)

	assert.Equal(t, 2, putter.calls)
	assert.Equal(t, string(pngHeader), putter.bodies[1], "the retry resends the whole file")
	assert.True(t, strings.HasPrefix(res.PublicID, "submissions/"))
	assert.True(t, strings.HasSuffix(res.PublicID, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+res.PublicID, res.URL)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, len(pngHeader), res.Size)
	assert.Equal(t, "image/png", aws.ToString(putter.inputs[1].ContentType))
	assert.Equal(t, "proofs", aws.ToString(putter.inputs[1].Bucket))
}

func TestR2Storage_UploadGivesUp(t *testing.T) {
	putter := &fakePutter{failures: 10}
	storage := newR2Storage(putter, "proofs", "https://cdn.example.com", testOptions(), zap.NewNop())

	_, err := storage.Upload(context.Background(), fileHeader(t, "bottle.png", pngHeader), "custom")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, 3, putter.calls)
}

func TestR2Storage_RejectsBeforeUploading(t *testing.T) {
	putter := &fakePutter{}
	storage := newR2Storage(putter, "proofs", "https://cdn.example.com", testOptions(), zap.NewNop())

	_, err := storage.Upload(context.Background(), fileHeader(t, "notes.txt", []byte("hello")), "")
	assert.ErrorIs(t, err, ErrInvalidContentType)
	assert.Zero(t, putter.calls)
}
