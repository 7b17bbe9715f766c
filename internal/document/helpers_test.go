package document

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"io"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: 90, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func dataURI(subtype string, data []byte) string {
	return "data:image/" + subtype + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// idatPayload concatenates the IDAT chunk data of a PNG stream.
func idatPayload(t *testing.T, data []byte) []byte {
	t.Helper()
	var out []byte
	pos := 8
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		kind := string(data[pos+4 : pos+8])
		if kind == "IDAT" {
			out = append(out, data[pos+8:pos+8+length]...)
		}
		pos += 12 + length
	}
	require.NotEmpty(t, out)
	return out
}

// signatureStroke is what canvas signature pads produce: dark strokes on a fully
// transparent background.
func signatureStroke(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		y := h/2 + (x%20 - 10)
		if y >= 0 && y < h {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 120, A: 255})
		}
	}
	return img
}

func encodeTransparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, signatureStroke(w, h)))
	return buf.Bytes()
}

var embeddedFilePattern = regexp.MustCompile(`/Type /EmbeddedFile /Length (\d+) /Filter /FlateDecode`)

// embeddedFiles inflates every embedded file stream of a PDF.
func embeddedFiles(t *testing.T, pdf []byte) [][]byte {
	t.Helper()
	var files [][]byte
	for _, loc := range embeddedFilePattern.FindAllSubmatchIndex(pdf, -1) {
		length, err := strconv.Atoi(string(pdf[loc[2]:loc[3]]))
		require.NoError(t, err)
		start := bytes.Index(pdf[loc[1]:], []byte("stream\n"))
		require.GreaterOrEqual(t, start, 0)
		start += loc[1] + len("stream\n")
		zr, err := zlib.NewReader(bytes.NewReader(pdf[start : start+length]))
		require.NoError(t, err)
		content, err := io.ReadAll(zr)
		require.NoError(t, err)
		files = append(files, content)
	}
	return files
}
