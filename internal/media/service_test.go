package media

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/storage"
)

type memRepo struct {
	files map[string]*File
}

func (r *memRepo) Create(_ context.Context, f *File) error {
	r.files[f.ID] = f
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.files, id)
	return nil
}

// fileHeader builds a multipart.FileHeader the way net/http would hand it to a handler.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestService(t *testing.T) (Service, *memRepo) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := &memRepo{files: map[string]*File{}}
	return NewService(repo, store), repo
}

func TestUploadCoverCreatesThumbnail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "cover.png", pngBytes(t, 1200, 600)),
		UserID:       "user-1",
		MaxSizeBytes: CoverMaxBytes,
		AllowedTypes: CoverTypes,
		RequireImage: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	require.NotNil(t, f.ThumbnailPath)
	require.NotNil(t, f.UserID)
	assert.Contains(t, repo.files, f.ID)

	rc, _, err := svc.DownloadThumbnail(ctx, f.ID)
	require.NoError(t, err)
	thumb, format, err := image.Decode(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, thumb.Bounds().Dy())

	rc, _, err = svc.Download(ctx, f.ID)
	require.NoError(t, err)
	original, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, int(f.Size), len(original))

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, _, err = svc.Download(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadRejections(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "notes.png", []byte("plain text pretending to be a png")),
		AllowedTypes: CoverTypes,
		RequireImage: true,
	})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "big.png", pngBytes(t, 64, 64)),
		MaxSizeBytes: 10,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader: fileHeader(t, "empty.bin", nil),
	})
	assert.ErrorIs(t, err, ErrEmptyFile)

	assert.Empty(t, repo.files)
}

func TestUploadNonImageWithoutThumbnail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader: fileHeader(t, "readme.txt", []byte("hello")),
	})
	require.NoError(t, err)
	assert.Nil(t, f.ThumbnailPath)
	assert.Nil(t, f.UserID)

	_, _, err = svc.DownloadThumbnail(ctx, f.ID)
	assert.ErrorIs(t, err, ErrThumbnailMissing)
}
