package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "covers/ab/one.jpg", strings.NewReader("hello")))

	rc, err := s.Get(ctx, "covers/ab/one.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "covers/ab/one.jpg"))
	_, err = s.Get(ctx, "covers/ab/one.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "covers/ab/one.jpg"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, "../outside.txt", strings.NewReader("x")), ErrInvalidPath)
	assert.ErrorIs(t, s.Save(ctx, "/etc/passwd", strings.NewReader("x")), ErrInvalidPath)
	_, err = s.Get(ctx, "a/../../b")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestGenerateThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		src.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewImageProcessor().GenerateThumbnail(&buf, 200, 200)
	require.NoError(t, err)

	img, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestGenerateThumbnailRejectsNonImage(t *testing.T) {
	_, err := NewImageProcessor().GenerateThumbnail(strings.NewReader("not an image"), 10, 10)
	assert.Error(t, err)
}
