package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/pkg/id"
	"go.uber.org/zap"
)

// MaxImageSize is the largest picture accepted for a listing.
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type imageHost interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// UploadImage stores the picture on the image host and records its URL on the
// product. If the backend refuses the URL the object is removed again.
func (s *service) UploadImage(ctx context.Context, token, productID string, in UploadInput) (*domain.Image, error) {
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(in.Filename)
	}
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("unsupported image type %q: %w", contentType, domain.ErrBadRequest)
	}
	if in.Size <= 0 || in.Size > MaxImageSize {
		return nil, fmt.Errorf("image must be between 1 byte and %d MiB: %w", MaxImageSize>>20, domain.ErrBadRequest)
	}

	key := fmt.Sprintf("products/%s/%s-%s", sanitizeFilename(productID), id.New(), sanitizeFilename(in.Filename))
	url, err := s.images.Upload(ctx, key, io.LimitReader(in.Reader, in.Size), in.Size, contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.backend.AttachImage(ctx, token, productID, url); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("product image uploaded", zap.String("product_id", productID), zap.String("key", key))
	return &domain.Image{Object: key, URL: url, ContentType: contentType, Size: in.Size}, nil
}

func contentTypeFromName(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
