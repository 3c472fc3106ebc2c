package scaling

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/forestrie/go-scalingbloom/bitmap"
)

// FilenameFunc returns the backing file for a new layer, or "" for an
// anonymous one. It is called once per layer created.
type FilenameFunc func() (string, error)

// BitmapFunc returns a ready bitmap of size bytes for a new layer. It is
// called once per layer created.
type BitmapFunc func(size uint64) (*bitmap.Bitmap, error)

// UUIDFilenames names each layer dir/<random uuid><ext>.
func UUIDFilenames(dir string, ext string) FilenameFunc {
	return func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("naming layer file: %w", err)
		}
		return filepath.Join(dir, id.String()+ext), nil
	}
}

// DefaultBitmapFunc creates each bitmap with bitmap.New, backed by the file
// filenames returns. opts apply to every bitmap.
func DefaultBitmapFunc(filenames FilenameFunc, opts ...bitmap.Option) BitmapFunc {
	return func(size uint64) (*bitmap.Bitmap, error) {
		bopts := append([]bitmap.Option{}, opts...)
		if filenames != nil {
			name, err := filenames()
			if err != nil {
				return nil, err
			}
			if name != "" {
				bopts = append(bopts, bitmap.WithFile(name))
			}
		}
		return bitmap.New(size, bopts...)
	}
}
