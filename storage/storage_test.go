package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSniff(t *testing.T) {
	m, err := Sniff(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.String())
	assert.True(t, IsImage(m))

	m, err = Sniff([]byte("%PDF-1.7\n"))
	require.NoError(t, err)
	assert.True(t, m.Is("application/pdf"))
	assert.False(t, IsImage(m))

	_, err = Sniff([]byte("plain words"))
	assert.NoError(t, err)

	_, err = Sniff([]byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "http://localhost:8080/")
	m, err := Sniff(pngHeader)
	require.NoError(t, err)

	url, err := l.Upload(context.Background(), File{Folder: "../attachments", Name: "abc", Data: pngHeader, MIME: m})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/attachments/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "attachments", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}
