package imaging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onePixelPNG is a minimal valid 1x1 transparent PNG, small enough to embed
// directly rather than reading from a fixture.
var onePixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInspect_ReadsDimensionsAndHash(t *testing.T) {
	path := writeImage(t, "poster.png", onePixelPNG)

	info, err := Inspect(path)

	require.NoError(t, err)
	assert.Equal(t, 1, info.Width)
	assert.Equal(t, 1, info.Height)
	assert.Len(t, info.SourceHash, 64) // hex-encoded sha256
	assert.Empty(t, info.CaptureTime)  // no EXIF in a bare PNG
}

func TestInspect_HashIsDeterministicForSameContent(t *testing.T) {
	pathA := writeImage(t, "a.png", onePixelPNG)
	pathB := writeImage(t, "b.png", onePixelPNG)

	infoA, err := Inspect(pathA)
	require.NoError(t, err)
	infoB, err := Inspect(pathB)
	require.NoError(t, err)

	assert.Equal(t, infoA.SourceHash, infoB.SourceHash)
}

func TestInspect_MissingFileErrors(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "does-not-exist.png"))
	assert.Error(t, err)
}

func TestInspect_UnreadableImageErrors(t *testing.T) {
	path := writeImage(t, "not-an-image.png", []byte("this is not image data"))

	_, err := Inspect(path)
	assert.Error(t, err)
}

func TestInspect_UnreadableWebpErrors(t *testing.T) {
	path := writeImage(t, "broken.webp", []byte("not a real webp payload"))

	_, err := Inspect(path)
	assert.Error(t, err)
}
