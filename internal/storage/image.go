package storage

import (
	"encoding/base64"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for payloads that are not a base64 image data URI.
var ErrInvalidImage = errors.New("image must be a base64 encoded data URI of a png, jpeg, gif or webp file")

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/png;base64,<payload>". The declared type
// must match the sniffed content.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext, ok := imageExtensions[declared]
	if !ok {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if sniffed := http.DetectContentType(data); sniffed != declared {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, ContentType: declared, Extension: ext}, nil
}

// NewKey returns a unique key for an object under dir.
func NewKey(dir, extension string) string {
	return path.Join(dir, uuid.New().String()+extension)
}
