package document

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"regexp"
	"strings"

	// Register decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/guestdesk/backend/pkg/apperr"
)

// ErrInvalidSignature is returned for a malformed, unsupported or undecodable signature data URI.
var ErrInvalidSignature = apperr.Validation("Invalid signature image format.")

var signaturePattern = regexp.MustCompile(`^data:image/([A-Za-z0-9.+-]+);base64,(.+)$`)

var supportedSubtypes = map[string]bool{
	"png":  true,
	"jpeg": true,
	"jpg":  true,
	"gif":  true,
}

// Signature is a decoded signature image ready for embedding.
type Signature struct {
	Data   []byte // embeddable image, re-encoded when the PDF writer cannot take the source
	Source []byte // payload exactly as decoded from the data URI
	Format string // png, jpeg or gif, as detected from the bytes
	Width  int
	Height int
}

// ParseSignature decodes a "data:image/<subtype>;base64,<payload>" URI into an embeddable image.
func ParseSignature(uri string) (Signature, error) {
	data, err := DecodeSignatureURI(uri)
	if err != nil {
		return Signature{}, err
	}
	return NewSignature(data)
}

// DecodeSignatureURI checks the data URI shape and subtype and returns the decoded payload.
// The payload is not inspected as an image.
func DecodeSignatureURI(uri string) ([]byte, error) {
	m := signaturePattern.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil || !supportedSubtypes[strings.ToLower(m[1])] {
		return nil, ErrInvalidSignature
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidSignature
	}
	return data, nil
}

// NewSignature detects the image format and dimensions of data.
func NewSignature(data []byte) (Signature, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return Signature{}, ErrInvalidSignature
	}
	sig := Signature{Data: data, Source: data, Format: format, Width: cfg.Width, Height: cfg.Height}
	if format == "png" && interlaced(data) {
		if sig, err = reencodePNG(sig); err != nil {
			return Signature{}, ErrInvalidSignature
		}
	}
	return sig, nil
}

// imageType returns the fpdf image type name.
func (s Signature) imageType() string {
	switch s.Format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// attachmentName is the filename the decoded payload is attached under.
func (s Signature) attachmentName() string {
	return signatureName + "." + s.Format
}

// interlaced reports the Adam7 flag of the IHDR chunk (byte 28 of a PNG stream).
func interlaced(data []byte) bool {
	return len(data) > 28 && data[28] != 0
}

// The PDF writer only embeds non-interlaced PNGs.
func reencodePNG(sig Signature) (Signature, error) {
	img, err := png.Decode(bytes.NewReader(sig.Data))
	if err != nil {
		return Signature{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Signature{}, err
	}
	sig.Data = buf.Bytes()
	return sig, nil
}
