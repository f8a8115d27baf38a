// Package imagedata holds the binary image value exchanged with the image
// model and its data-URI encoding.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// PNGMIMEType is the MIME type images are wrapped with when rendered as data URIs.
const PNGMIMEType = "image/png"

// ErrEmptyImage is returned when an image carries no bytes.
var ErrEmptyImage = errors.New("image data is empty")

// dataURIPrefix matches the prefixes the edit path strips before upload.
var dataURIPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// Image is an encoded image blob (PNG or JPEG bytes) plus its MIME type.
// Values are treated as immutable once created; callers must not modify Data.
type Image struct {
	MIMEType string
	Data     []byte
}

// New returns an Image, defaulting the MIME type to PNG.
func New(data []byte, mimeType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = PNGMIMEType
	}
	return Image{MIMEType: mimeType, Data: data}, nil
}

// IsZero reports whether the image has no data.
func (i Image) IsZero() bool {
	return len(i.Data) == 0
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI renders the image as a PNG data URI. The prefix is always PNG,
// matching what the generation and edit paths hand back to callers.
func (i Image) DataURI() string {
	return "data:" + PNGMIMEType + ";base64," + i.Base64()
}

// Equal reports whether two images carry identical bytes.
func (i Image) Equal(o Image) bool {
	return bytes.Equal(i.Data, o.Data)
}

// stripDataURIPrefix removes a leading data:image/...;base64, prefix if present.
func stripDataURIPrefix(s string) string {
	return dataURIPrefix.ReplaceAllString(strings.TrimSpace(s), "")
}

// ParseDataURI decodes a data URI (or bare base64 string) into an Image.
// Bare base64 without a prefix is assumed to be PNG.
func ParseDataURI(s string) (Image, error) {
	s = strings.TrimSpace(s)
	mimeType := PNGMIMEType
	if m := dataURIPrefix.FindStringSubmatch(s); m != nil {
		if m[1] != "png" {
			mimeType = "image/jpeg"
		}
	} else if strings.HasPrefix(s, "data:") {
		return Image{}, fmt.Errorf("unsupported data URI prefix: %s", truncate(s, 40))
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(s))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image data: %w", err)
	}
	return New(data, mimeType)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
