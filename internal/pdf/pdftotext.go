package pdf

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	return p.run(ctx, pdfPath, "-layout", pdfPath, "-")
}

// ExtractPageText runs pdftotext -layout restricted to one 0-indexed page.
func (p *PdfToText) ExtractPageText(ctx context.Context, pdfPath string, page int) (string, error) {
	// pdftotext pages are 1-indexed.
	n := strconv.Itoa(page + 1)
	return p.run(ctx, pdfPath, "-layout", "-f", n, "-l", n, pdfPath, "-")
}

func (p *PdfToText) run(ctx context.Context, pdfPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "pdf: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	// CAD exports embed ligatures and fullwidth forms that break keyword
	// matching downstream; NFKC folds them to plain ASCII equivalents.
	return norm.NFKC.String(stdout.String()), nil
}
