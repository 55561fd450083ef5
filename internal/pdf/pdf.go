// Package pdf wraps the poppler CLI tools used to read architectural
// blueprints: pdftotext for page text, pdfinfo for document metadata, and
// pdftoppm for page rasters.
package pdf

import (
	"context"
	"image"
)

// TextExtractor extracts text content from PDF pages.
type TextExtractor interface {
	// ExtractPageText returns the text of a single 0-indexed page.
	ExtractPageText(ctx context.Context, pdfPath string, page int) (string, error)
	// ExtractText returns the text of the whole document.
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Rasterizer renders PDF pages to grayscale images.
type Rasterizer interface {
	// RenderPage renders a single 0-indexed page at the given DPI.
	RenderPage(ctx context.Context, pdfPath string, page int, dpi int) (*image.Gray, error)
}

// Inspector reports document metadata.
type Inspector interface {
	PageCount(ctx context.Context, pdfPath string) (int, error)
}
