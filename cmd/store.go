package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/draftworks/manualj-cli/internal/pdf"
	"github.com/draftworks/manualj-cli/internal/pipeline"
	"github.com/draftworks/manualj-cli/internal/store"
	"github.com/draftworks/manualj-cli/pkg/vision"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPipeline wires the poppler tools, the vision client and the store into
// a ready pipeline. The caller owns closing the returned store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	var visionClient vision.Client
	if cfg.Vision.Key != "" && !cfg.Vision.Disabled {
		visionClient = vision.NewClient(vision.Config{
			APIKey:         cfg.Vision.Key,
			Model:          cfg.Vision.Model,
			MaxTokens:      int64(cfg.Vision.MaxTokens),
			RequestsPerMin: cfg.Vision.RequestsPerMin,
		})
	}

	p, err := pipeline.New(cfg, st,
		pdf.NewPdfToText(cfg.PDF.PdfToTextPath),
		pdf.NewPdfToPpm(cfg.PDF.PdfToPpmPath),
		pdf.NewPdfInfo(cfg.PDF.PdfInfoPath),
		visionClient,
	)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}
	return p, st, nil
}
