// Package storage puts uploaded files somewhere they can be served from.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadSize = 10 << 20

var ErrUnsupportedType = errors.New("unsupported file type")

type File struct {
	Folder string
	Name   string
	Data   []byte
	MIME   *mimetype.MIME
	// Transformation is a Cloudinary transformation string; local storage ignores it.
	Transformation string
}

type Uploader interface {
	// Upload stores f and returns its public URL.
	Upload(ctx context.Context, f File) (string, error)
}

var allowedTypes = []string{"application/pdf", "text/plain", "application/zip"}

// Sniff detects the content type of data and rejects anything that is not an
// image, PDF, plain text or zip based archive.
func Sniff(data []byte) (*mimetype.MIME, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return detected, nil
		}
		for _, allowed := range allowedTypes {
			if m.Is(allowed) {
				return detected, nil
			}
		}
	}
	return nil, ErrUnsupportedType
}

// IsImage reports whether m is an image type.
func IsImage(m *mimetype.MIME) bool {
	return m != nil && strings.HasPrefix(m.String(), "image/")
}
