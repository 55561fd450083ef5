// Package vision extracts room semantics from rendered floor plan pages
// using the Anthropic vision API. It is the fallback path when contour
// detection cannot produce trustworthy geometry on its own.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client defines the vision operations used by the pipeline.
type Client interface {
	ExtractRooms(ctx context.Context, req ExtractRoomsRequest) (*ExtractRoomsResponse, error)
}

// ExtractRoomsRequest is our own request type for ExtractRooms.
type ExtractRoomsRequest struct {
	// PNG is the rendered page image.
	PNG []byte
	// PageNumber is the 1-indexed source page, for logging only.
	PageNumber int
	// ScalePxPerFt, when known, is passed to the model so it can report
	// dimensions in feet as a cross-check.
	ScalePxPerFt float64
	// FloorLevel, when known from classification, biases room typing.
	FloorLevel int
}

// RoomObservation is a single room as reported by the model. Fields are
// loosely typed on purpose: the response is untrusted input and is
// reconciled into strict geometry by the caller.
type RoomObservation struct {
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	BBoxPx        [4]float64 `json:"bbox_px"` // minx, miny, maxx, maxy
	WidthFt       float64    `json:"width_ft,omitempty"`
	LengthFt      float64    `json:"length_ft,omitempty"`
	AreaSqFt      float64    `json:"area_sqft,omitempty"`
	ExteriorWalls int        `json:"exterior_walls,omitempty"`
	Windows       int        `json:"windows,omitempty"`
	Floor         int        `json:"floor,omitempty"`
	// Ceiling is "vaulted" or "cathedral" when the plan calls it out;
	// empty means a flat ceiling.
	Ceiling    string  `json:"ceiling,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ExtractRoomsResponse is our own response type for ExtractRooms.
type ExtractRoomsResponse struct {
	Rooms []RoomObservation
	Usage TokenUsage
	// RawText is the model's full text output, kept for audit records.
	RawText string
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD for a model ID.
// Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(u.InputTokens)/1e6)*pricing[0] + (float64(u.OutputTokens)/1e6)*pricing[1]
}

// Config configures the SDK-backed client.
type Config struct {
	APIKey         string
	Model          string
	MaxTokens      int64
	RequestsPerMin float64
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client  sdk.Client
	model   string
	maxTok  int64
	limiter *rate.Limiter
}

// NewClient creates a vision client backed by the SDK, rate limited to
// cfg.RequestsPerMin.
func NewClient(cfg Config) Client {
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 30
	}
	maxTok := cfg.MaxTokens
	if maxTok <= 0 {
		maxTok = 2048
	}
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(cfg.APIKey),
		),
		model:   cfg.Model,
		maxTok:  maxTok,
		limiter: rate.NewLimiter(rate.Limit(rpm/60), 1),
	}
}

func (c *sdkClient) ExtractRooms(ctx context.Context, req ExtractRoomsRequest) (*ExtractRoomsResponse, error) {
	if len(req.PNG) == 0 {
		return nil, eris.New("vision: empty page image")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "vision: rate limit wait")
	}

	encoded := base64.StdEncoding.EncodeToString(req.PNG)
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTok,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64("image/png", encoded),
				sdk.NewTextBlock(userPrompt(req)),
			),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("vision: extract rooms page %d", req.PageNumber))
	}

	var text string
	for _, b := range msg.Content {
		if b.Type == "text" {
			text += b.Text
		}
	}

	rooms, err := ParseRoomObservations(text)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("vision: parse response page %d", req.PageNumber))
	}

	usage := TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	zap.L().Info("vision: rooms extracted",
		zap.Int("page", req.PageNumber),
		zap.Int("rooms", len(rooms)),
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
		zap.Float64("estimated_cost_usd", usage.EstimateCost(c.model)),
	)

	return &ExtractRoomsResponse{Rooms: rooms, Usage: usage, RawText: text}, nil
}
