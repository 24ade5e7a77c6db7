package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files under Dir; the router serves Dir at /uploads.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Upload(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder := filepath.Base(filepath.Clean("/" + f.Folder))
	name := filepath.Base(filepath.Clean("/" + f.Name))
	if f.MIME != nil {
		name += f.MIME.Extension()
	}

	dir := filepath.Join(l.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return l.BaseURL + "/uploads/" + folder + "/" + name, nil
}
