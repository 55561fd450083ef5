package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"strconv"

	"github.com/rotisserie/eris"
)

// PdfToPpm renders PDF pages to grayscale rasters using the pdftoppm CLI tool.
type PdfToPpm struct {
	binPath string
}

// NewPdfToPpm creates a PdfToPpm rasterizer. If binPath is empty, "pdftoppm" is used.
func NewPdfToPpm(binPath string) *PdfToPpm {
	if binPath == "" {
		binPath = "pdftoppm"
	}
	return &PdfToPpm{binPath: binPath}
}

// RenderPage renders one 0-indexed page as grayscale PNG at the given DPI
// and decodes it.
func (p *PdfToPpm) RenderPage(ctx context.Context, pdfPath string, page int, dpi int) (*image.Gray, error) {
	n := strconv.Itoa(page + 1)
	cmd := exec.CommandContext(ctx, p.binPath,
		"-png", "-gray",
		"-r", strconv.Itoa(dpi),
		"-f", n, "-l", n,
		pdfPath, "-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "pdf: pdftoppm failed for %s page %d: %s", pdfPath, page, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, eris.Wrapf(err, "pdf: decode rendered page %d of %s", page, pdfPath)
	}

	return toGray(img), nil
}

// toGray converts any decoded image to *image.Gray without copying when the
// decoder already produced one.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return g
}
