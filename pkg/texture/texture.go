// Package texture prepares image payloads for export: MIME detection
// and re-encoding of formats that core glTF does not accept.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
)

// ErrUnknownFormat is returned for payloads that match no supported
// image format.
var ErrUnknownFormat = errors.New("unknown image format")

// MIME types handled by this package. PNG and JPEG are the two formats
// core glTF accepts; the others only ever appear as Normalize inputs.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeBMP  = "image/bmp"
	MimeTGA  = "image/x-tga"
)

// SniffMIME detects the payload format from its leading bytes. TGA has
// no signature and is recognized by header plausibility instead. The
// empty string is returned for unrecognized payloads.
func SniffMIME(data []byte) string {
	kind, _ := filetype.Match(data)
	switch kind.MIME.Value {
	case MimePNG:
		return MimePNG
	case MimeJPEG:
		return MimeJPEG
	case MimeBMP:
		return MimeBMP
	}
	if looksLikeTGA(data) {
		return MimeTGA
	}
	return ""
}

// Normalize returns the payload in a format core glTF accepts. PNG and
// JPEG pass through unchanged; BMP and TGA are decoded and re-encoded
// as PNG. The returned MIME type describes the returned bytes.
func Normalize(data []byte) ([]byte, string, error) {
	switch SniffMIME(data) {
	case MimePNG:
		return data, MimePNG, nil
	case MimeJPEG:
		return data, MimeJPEG, nil
	case MimeBMP:
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding BMP: %w", err)
		}
		return encodePNG(img)
	case MimeTGA:
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding TGA: %w", err)
		}
		return encodePNG(img)
	}
	return nil, "", ErrUnknownFormat
}

// ExtensionForMIME returns the customary file extension for a MIME
// type, without the dot. Unknown types map to "bin".
func ExtensionForMIME(mime string) string {
	switch mime {
	case MimePNG:
		return "png"
	case MimeJPEG:
		return "jpg"
	case MimeBMP:
		return "bmp"
	case MimeTGA:
		return "tga"
	}
	return "bin"
}

func encodePNG(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), MimePNG, nil
}
