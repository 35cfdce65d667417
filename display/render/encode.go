package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// kittyChunkSize is the maximum number of base64 bytes per Kitty chunk.
const kittyChunkSize = 4096

// ErrEmptyImage is returned for a nil image or one with no pixels.
var ErrEmptyImage = errors.New("render: empty image")

// Encode renders img into a cols x rows cell area using protocol p.
func Encode(img image.Image, p Protocol, cols, rows int) (string, error) {
	switch p {
	case ProtocolKitty:
		return Kitty(img, cols, rows)
	case ProtocolITerm2:
		return ITerm2(img, cols, rows)
	default:
		return HalfBlock(img, cols, rows)
	}
}

// HalfBlock fits img into cols x (rows*2) pixels and emits one upper
// half-block per cell: the foreground is the top pixel, the background the
// bottom one. Rows are separated by newlines with no trailing newline.
func HalfBlock(img image.Image, cols, rows int) (string, error) {
	if isEmpty(img) {
		return "", ErrEmptyImage
	}
	if cols <= 0 || rows <= 0 {
		return "", nil
	}

	fitted := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	bounds := fitted.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	b.Grow(w * (h / 2) * 40)
	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			tr, tg, tb := rgb(fitted.At(bounds.Min.X+x, bounds.Min.Y+y))
			var br, bg, bb uint8
			if y+1 < h {
				br, bg, bb = rgb(fitted.At(bounds.Min.X+x, bounds.Min.Y+y+1))
			}
			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀\033[0m",
				tr, tg, tb, br, bg, bb)
		}
	}
	return b.String(), nil
}

// Kitty encodes img as PNG and wraps it in Kitty graphics escapes sized to
// cols x rows cells, chunked as the protocol requires.
func Kitty(img image.Image, cols, rows int) (string, error) {
	encoded, err := pngBase64(img)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if len(encoded) <= kittyChunkSize {
		fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=0;%s\033\\", cols, rows, encoded)
		return b.String(), nil
	}
	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		chunk := encoded[i:end]
		switch {
		case i == 0:
			fmt.Fprintf(&b, "\033_Gf=100,a=T,t=d,c=%d,r=%d,m=1;%s\033\\", cols, rows, chunk)
		case end >= len(encoded):
			fmt.Fprintf(&b, "\033_Gm=0;%s\033\\", chunk)
		default:
			fmt.Fprintf(&b, "\033_Gm=1;%s\033\\", chunk)
		}
	}
	return b.String(), nil
}

// ITerm2 encodes img as an iTerm2 inline image (OSC 1337) of cols x rows
// cells.
func ITerm2(img image.Image, cols, rows int) (string, error) {
	encoded, err := pngBase64(img)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\033]1337;File=name=chart.png;width=%d;height=%d;preserveAspectRatio=0;inline=1:%s\007",
		cols, rows, encoded), nil
}

func pngBase64(img image.Image) (string, error) {
	if isEmpty(img) {
		return "", ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("render: encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func isEmpty(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}

func rgb(c color.Color) (r, g, b uint8) {
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}
