package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	_ "image/jpeg" // register decoders for library uploads

	xdraw "golang.org/x/image/draw"

	"github.com/msomdec/collage-studio/internal/domain"
)

// GridCompositor lays the working set out on a square-ish grid and encodes
// the result as PNG. It implements domain.Compositor: pure, synchronous,
// and total: an empty input yields nil and an undecodable image simply
// leaves its cell blank.
type GridCompositor struct{}

// NewGridCompositor creates a GridCompositor.
func NewGridCompositor() GridCompositor {
	return GridCompositor{}
}

// Composite renders images onto a target-sized canvas. Cells are filled in
// selection order, left to right, top to bottom.
func (GridCompositor) Composite(images []domain.Image, target domain.Size) *domain.Image {
	if len(images) == 0 {
		return nil
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(images)))))
	rows := (len(images) + cols - 1) / cols
	cellW := target.Width / cols
	cellH := target.Height / rows

	canvas := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	for i, img := range images {
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			continue
		}
		col := i % cols
		row := i / cols
		cell := image.Rect(col*cellW, row*cellH, (col+1)*cellW, (row+1)*cellH)
		xdraw.ApproxBiLinear.Scale(canvas, fitRect(cell, decoded.Bounds()), decoded, decoded.Bounds(), xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		// png.Encode on an in-memory RGBA only fails if the writer does.
		return nil
	}
	return &domain.Image{ContentType: "image/png", Data: buf.Bytes()}
}

// fitRect scales src's aspect ratio into cell and centers it.
func fitRect(cell image.Rectangle, src image.Rectangle) image.Rectangle {
	cw, ch := cell.Dx(), cell.Dy()
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 || cw == 0 || ch == 0 {
		return cell
	}

	w, h := cw, sh*cw/sw
	if h > ch {
		w, h = sw*ch/sh, ch
	}
	x := cell.Min.X + (cw-w)/2
	y := cell.Min.Y + (ch-h)/2
	return image.Rect(x, y, x+w, y+h)
}
