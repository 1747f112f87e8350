package assets

import (
	"bytes"
	"crypto/sha256"
	"image"
	"image/color"
	"image/png"
	"strings"
)

const (
	gridSize   = 5
	cellPixels = 48
	marginPx   = 24
)

// renderIdenticon draws the 5x5 mirrored identicon for email as a PNG.
// The digest of the lowercased address picks both the foreground color
// and which cells are filled, so a given address always renders the
// same image.
func renderIdenticon(email string) ([]byte, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))

	fg := color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xFF}
	bg := color.NRGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}

	side := gridSize*cellPixels + 2*marginPx
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}

	// Only the left three columns come from the digest; the right two
	// mirror them for symmetry.
	for row := 0; row < gridSize; row++ {
		for col := 0; col <= gridSize/2; col++ {
			bit := row*(gridSize/2+1) + col
			if sum[3+bit/8]&(1<<(bit%8)) == 0 {
				continue
			}
			fillCell(img, row, col, fg)
			fillCell(img, row, gridSize-1-col, fg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillCell(img *image.NRGBA, row, col int, c color.NRGBA) {
	x0 := marginPx + col*cellPixels
	y0 := marginPx + row*cellPixels
	for y := y0; y < y0+cellPixels; y++ {
		for x := x0; x < x0+cellPixels; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
