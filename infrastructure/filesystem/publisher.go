package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vidrop/domain/video"

	"github.com/google/renameio/v2"
)

// Publisher implements video.Publisher. The destination is replaced atomically,
// so a failure never leaves a half-written file at dstPath.
type Publisher struct{}

// NewPublisher creates a new filesystem publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish moves srcPath to dstPath, creating the parent directories of dstPath
func (p *Publisher) Publish(srcPath, dstPath string) error {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Same filesystem: a plain rename is already atomic.
	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	pending, err := renameio.NewPendingFile(dstPath,
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", srcPath, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	_ = os.Remove(srcPath)
	return nil
}

// Ensure Publisher implements video.Publisher
var _ video.Publisher = (*Publisher)(nil)
