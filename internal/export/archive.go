// Package export bundles generated dish photos into a ZIP archive.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/imagedata"
)

// zipMethodZstd is the ZIP compression method id for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

// Options controls archive output.
type Options struct {
	// Zstd stores entries with Zstandard instead of Deflate. Many unzip
	// tools cannot read these; 7-Zip and libarchive can.
	Zstd bool
	// Level is the zstd encoder level (1-22); 0 uses 12.
	Level int
}

// WriteArchive writes every dish that has an image to w as <slug>.png.
// Dishes without an image are skipped. Colliding file names get -2, -3, ...
// suffixes. It returns the number of files written.
func WriteArchive(w io.Writer, dishes []dish.Dish, opts Options) (int, error) {
	zw := zip.NewWriter(w)
	method := zip.Deflate
	if opts.Zstd {
		level := opts.Level
		if level <= 0 {
			level = 12
		}
		zw.RegisterCompressor(zipMethodZstd, func(out io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		})
		method = zipMethodZstd
	}

	names := newNameSet()
	written := 0
	for _, d := range dishes {
		if !d.HasImage() {
			continue
		}
		name := names.claim(imagedata.Slug(d.Name))
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: modTime(d),
		})
		if err != nil {
			return written, fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := fw.Write(d.Image.Data); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("failed to finalize archive: %w", err)
	}

	log.Info().
		Int("files", written).
		Int("skipped", len(dishes)-written).
		Bool("zstd", opts.Zstd).
		Msg("Archive written")
	return written, nil
}

func modTime(d dish.Dish) time.Time {
	if d.UpdatedAt.IsZero() {
		return time.Now()
	}
	return d.UpdatedAt
}

// nameSet hands out unique .png file names for slugs.
type nameSet map[string]int

func newNameSet() nameSet { return make(nameSet) }

func (s nameSet) claim(slug string) string {
	s[slug]++
	n := s[slug]
	if n == 1 {
		return slug + ".png"
	}
	candidate := slug + "-" + strconv.Itoa(n)
	for s[candidate] > 0 {
		n++
		s[slug] = n
		candidate = slug + "-" + strconv.Itoa(n)
	}
	s[candidate]++
	return candidate + ".png"
}
