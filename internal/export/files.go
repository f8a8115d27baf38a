package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/imagedata"
)

// WriteFiles writes every dish image into dir as <slug>.png, using the same
// naming as WriteArchive. It returns the written path per dish id.
func WriteFiles(dir string, dishes []dish.Dish) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	names := newNameSet()
	paths := make(map[string]string)
	for _, d := range dishes {
		if !d.HasImage() {
			continue
		}
		path := filepath.Join(dir, names.claim(imagedata.Slug(d.Name)))
		if err := os.WriteFile(path, d.Image.Data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths[d.ID] = path
		log.Debug().Str("dish", d.ID).Str("path", path).Int("bytes", len(d.Image.Data)).Msg("Image written")
	}
	return paths, nil
}
