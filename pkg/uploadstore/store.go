// Package uploadstore writes customer design files straight to a Cloud Storage
// bucket so large artwork never passes through the API as a multipart body.
package uploadstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedType is returned for files whose extension is not accepted.
	ErrUnsupportedType = errors.New("unsupported design file type")
	// ErrTooLarge is returned when the content exceeds Config.MaxSize.
	ErrTooLarge = errors.New("design file is too large")
)

// DefaultExtensions are the artwork formats accepted for fabrication.
var DefaultExtensions = []string{".ai", ".eps", ".pdf", ".psd", ".svg", ".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// Config holds the bucket settings.
type Config struct {
	BucketName   string `yaml:"bucket_name"`
	ObjectPrefix string `yaml:"object_prefix"`
	// MaxSize bounds a single file in bytes. Zero means 50 MiB.
	MaxSize int64 `yaml:"max_size"`
	// Extensions overrides DefaultExtensions.
	Extensions []string `yaml:"extensions"`
}

// Object describes a stored file.
type Object struct {
	Path        string
	FileName    string
	ContentType string
	Size        int64
}

// GCSStore stores design files in one bucket.
type GCSStore struct {
	client     GCSClient
	cfg        Config
	extensions map[string]struct{}
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a GCSStore.
func New(client GCSClient, cfg Config, logger zerolog.Logger) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("GCS client cannot be nil")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("GCS bucket name is required")
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 50 << 20
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}
	return &GCSStore{
		client:     client,
		cfg:        cfg,
		extensions: allowed,
		logger:     logger.With().Str("component", "GCSUploadStore").Logger(),
		now:        time.Now,
	}, nil
}

// Put streams content to a new object named <prefix>/<yyyy>/<mm>/<dd>/<uuid><ext>.
// A failed or oversized upload is aborted and leaves no object behind.
func (s *GCSStore) Put(ctx context.Context, fileName, contentType string, content io.Reader) (Object, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if _, ok := s.extensions[ext]; !ok {
		return Object{}, fmt.Errorf("%w: %q", ErrUnsupportedType, fileName)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := path.Join(s.cfg.ObjectPrefix, s.now().UTC().Format("2006/01/02"), uuid.NewString()+ext)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := s.client.Bucket(s.cfg.BucketName).Object(objectName).NewWriter(wctx, contentType)

	n, copyErr := io.Copy(w, io.LimitReader(content, s.cfg.MaxSize+1))
	if copyErr == nil && n > s.cfg.MaxSize {
		copyErr = ErrTooLarge
	}
	if copyErr != nil {
		cancel()
		_ = w.Close()
		s.logger.Warn().Err(copyErr).Str("object_name", objectName).Msg("Aborted design upload.")
		if errors.Is(copyErr, ErrTooLarge) {
			return Object{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.cfg.MaxSize)
		}
		return Object{}, fmt.Errorf("failed to stream %s: %w", objectName, copyErr)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close GCS object writer for %s: %w", objectName, err)
	}

	s.logger.Info().Str("object_name", objectName).Int64("bytes_written", n).Msg("Stored design file.")
	return Object{Path: objectName, FileName: fileName, ContentType: contentType, Size: n}, nil
}

// Delete removes a stored object, e.g. when the API refused to register it.
func (s *GCSStore) Delete(ctx context.Context, objectPath string) error {
	if err := s.client.Bucket(s.cfg.BucketName).Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %s: %w", objectPath, err)
	}
	return nil
}
