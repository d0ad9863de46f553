package drafts

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Decoders for the upload formats the original's file picker allowed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotAnImage is returned when uploaded bytes do not sniff and decode as a
// supported image.
var ErrNotAnImage = errors.New("uploaded file is not a decodable image")

// encodeImage validates the bytes as an image and returns them as an
// embeddable data URI, mirroring the browser FileReader.readAsDataURL result
// the document layout embeds directly.
func encodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrNotAnImage)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mt.String())
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
