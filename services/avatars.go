package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const avatarSize = 250

// AvatarService turns an uploaded image into a 250x250 avatar under the
// public avatar directory. File names carry the owner id plus a random
// suffix, so concurrent re-uploads by the same user never collide.
type AvatarService struct {
	tmpDir string
	dir    string
	log    *slog.Logger
}

func NewAvatarService(tmpDir, dir string, log *slog.Logger) (*AvatarService, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tmp dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating avatar dir: %w", err)
	}
	return &AvatarService{tmpDir: tmpDir, dir: dir, log: log}, nil
}

// TempPath names a scratch location for one upload.
func (s *AvatarService) TempPath(userID, ext string) string {
	return filepath.Join(s.tmpDir, fmt.Sprintf("%s-%s%s", userID, uuid.NewString(), ext))
}

// Ingest decodes the uploaded file, resizes it, and writes it under a fresh
// permanent name, returning the public URL path. The temporary upload is
// removed on every exit path; a failed removal is logged, not retried.
func (s *AvatarService) Ingest(tmpPath, userID string) (string, error) {
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove temporary avatar upload", "path", tmpPath, "err", err)
		}
	}()

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("decoding avatar: %w", err)
	}

	resized := imaging.Resize(img, avatarSize, avatarSize, imaging.Lanczos)

	name := fmt.Sprintf("%s-%s%s", userID, uuid.NewString(), filepath.Ext(tmpPath))
	if err := imaging.Save(resized, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("saving avatar: %w", err)
	}

	return "/avatars/" + name, nil
}
