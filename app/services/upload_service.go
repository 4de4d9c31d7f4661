package services

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/storage"
)

// imageDir is the storage prefix for uploaded images.
const imageDir = "images"

type UploadService struct {
	disk storage.Disk
}

func NewUploadService(disk storage.Disk) *UploadService {
	return &UploadService{disk: disk}
}

// UploadImage stores the image read from r under a fresh key and returns
// its public URL. The original filename only contributes its extension.
func (s *UploadService) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s.disk == nil {
		return "", apperr.Internal("image storage is not configured", nil)
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", apperr.InvalidInput("could not read upload: %v", err)
	}
	if len(head) == 0 {
		return "", apperr.InvalidInput("uploaded file is empty")
	}
	if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
		return "", apperr.InvalidInput("uploaded file is not an image (%s)", ct)
	}

	key := path.Join(imageDir, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	if err := s.disk.PutStream(ctx, key, br); err != nil {
		logger.WithCtx(ctx).Error("image upload failed", "key", key, "error", err)
		return "", apperr.Internal("failed to store image", err)
	}
	return s.disk.URL(key), nil
}
