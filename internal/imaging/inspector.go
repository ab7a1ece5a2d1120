// Package imaging is the pre-Phase-1 image inspector: it confirms a
// poster image is readable, recovers its pixel dimensions, computes the
// sha256 used to derive a poster's deterministic id, and best-effort
// extracts EXIF metadata. None of this touches the vision provider — it
// is the cheap local check the orchestrator runs before creating a
// session at all.
package imaging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Info is what the inspector recovers from one poster image.
type Info struct {
	SourceHash  string
	Width       int
	Height      int
	CaptureTime string // best-effort, empty when absent
	CameraMake  string
	CameraModel string
}

// Inspect opens path, decodes it to confirm it's a readable image, and
// returns its hash/dimensions/EXIF. A missing or unreadable file is the
// only error path; EXIF absence is silent, since most posters are
// scans/renders with no camera metadata.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("image unavailable: %w", err)
	}
	defer f.Close()

	hash, err := hashFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("image unavailable: %w", err)
	}

	width, height, err := decodeDimensions(path)
	if err != nil {
		return Info{}, fmt.Errorf("image unavailable: %w", err)
	}

	info := Info{SourceHash: hash, Width: width, Height: height}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if x, err := exif.Decode(f); err == nil {
			if t, err := x.DateTime(); err == nil {
				info.CaptureTime = t.Format("2006-01-02T15:04:05Z07:00")
			}
			if make, err := x.Get(exif.Make); err == nil {
				info.CameraMake, _ = make.StringVal()
			}
			if model, err := x.Get(exif.Model); err == nil {
				info.CameraModel, _ = model.StringVal()
			}
		}
		// EXIF absence/parse failure is expected for most posters; no
		// warning is raised.
	}

	return info, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func decodeDimensions(path string) (int, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return 0, 0, err
		}
		defer f.Close()
		img, err := webp.Decode(f)
		if err != nil {
			return 0, 0, err
		}
		bounds := img.Bounds()
		return bounds.Dx(), bounds.Dy(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		// imaging.Decode doesn't cover every format its own dependency
		// tree supports; fall back to the stdlib decoder before giving up.
		f2, openErr := os.Open(path)
		if openErr != nil {
			return 0, 0, err
		}
		defer f2.Close()
		cfg, _, cfgErr := image.DecodeConfig(f2)
		if cfgErr != nil {
			return 0, 0, err
		}
		return cfg.Width, cfg.Height, nil
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
