package generator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const fallbackMIMEType = "application/octet-stream"

// Image is an encoded image ready to be attached to a prompt or embedded in an export.
type Image struct {
	MIMEType string
	Data     []byte
}

// LoadImage reads path and guesses its MIME type from the extension, then from the bytes.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to process image at %s: %w", path, err)
	}
	return Image{MIMEType: guessMIMEType(path, data), Data: data}, nil
}

func guessMIMEType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return stripParams(t)
	}
	if len(data) > 0 {
		if t := stripParams(http.DetectContentType(data)); t != "" {
			return t
		}
	}
	return fallbackMIMEType
}

func stripParams(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns "data:<mime>;base64,<payload>".
func (i Image) DataURI() string {
	t := i.MIMEType
	if t == "" {
		t = fallbackMIMEType
	}
	return "data:" + t + ";base64," + i.Base64()
}

// ParseDataURI decodes a base64 data URI back into an Image.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, errors.New("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, errors.New("data uri has no payload")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Image{}, errors.New("data uri must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode data uri: %w", err)
	}
	if mediaType == "" {
		mediaType = stripParams(http.DetectContentType(data))
	}
	return Image{MIMEType: mediaType, Data: data}, nil
}
