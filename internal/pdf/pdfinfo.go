package pdf

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfInfo reads document metadata using the pdfinfo CLI tool.
type PdfInfo struct {
	binPath string
}

// NewPdfInfo creates a PdfInfo inspector. If binPath is empty, "pdfinfo" is used.
func NewPdfInfo(binPath string) *PdfInfo {
	if binPath == "" {
		binPath = "pdfinfo"
	}
	return &PdfInfo{binPath: binPath}
}

// PageCount returns the number of pages in the document.
func (p *PdfInfo) PageCount(ctx context.Context, pdfPath string) (int, error) {
	cmd := exec.CommandContext(ctx, p.binPath, pdfPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, eris.Wrapf(err, "pdf: pdfinfo failed for %s: %s", pdfPath, stderr.String())
	}

	n, err := parsePageCount(stdout.String())
	if err != nil {
		return 0, eris.Wrapf(err, "pdf: parse pdfinfo output for %s", pdfPath)
	}
	return n, nil
}

// parsePageCount finds the "Pages:" line in pdfinfo output.
func parsePageCount(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		v := strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, eris.Wrapf(err, "bad page count %q", v)
		}
		return n, nil
	}
	return 0, eris.New("no Pages line in pdfinfo output")
}
