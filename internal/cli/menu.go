package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// StdinPath selects standard input as the menu source.
const StdinPath = "-"

// maxMenuBytes bounds how much menu text is read.
const maxMenuBytes = 1 << 20

// ErrPickerCanceled is returned when the user closes the file dialog.
var ErrPickerCanceled = errors.New("menu file selection canceled")

// ReadMenu reads menu text from path, or from stdin when path is "-".
func ReadMenu(path string, stdin io.Reader) (string, error) {
	var r io.Reader
	if path == StdinPath {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open menu file: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxMenuBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read menu: %w", err)
	}
	if len(data) > maxMenuBytes {
		return "", fmt.Errorf("menu is larger than %d bytes", maxMenuBytes)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("menu is empty")
	}
	log.Debug().Str("source", path).Int("bytes", len(data)).Msg("Menu loaded")
	return text, nil
}

// PickMenuFile opens a native file dialog for a text menu.
func PickMenuFile() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Select a menu"),
		zenity.FileFilters{
			{Name: "Menu text", Patterns: []string{"*.txt", "*.md"}},
			{Name: "All files", Patterns: []string{"*"}},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrPickerCanceled
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	return path, nil
}
