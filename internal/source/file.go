package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileOpener opens local paths. A file:// prefix is accepted.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	path := strings.TrimPrefix(location, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	return f, nil
}
