package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/detection"
	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/pipeline"
	"github.com/ironsheep/floorplan-walls/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "floorplan_detect_walls").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// and the error string, prefixed with its kind, as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		},
	})
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "floorplan_load":
		return s.handleLoad(args)
	case "floorplan_detect_walls":
		return s.handleDetectWalls(ctx, args)
	case "floorplan_detect_symbols":
		return s.handleDetectSymbols(args)
	case "floorplan_preprocess":
		return s.handlePreprocess(ctx, args)
	case "floorplan_edge_detect":
		return s.handleEdgeDetect(ctx, args)
	case "floorplan_render_overlay":
		return s.handleRenderOverlay(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperr.Input("invalid tool arguments", err)
	}
	return nil
}

func (s *Server) load(path string) (*image.Gray, error) {
	if path == "" {
		return nil, apperr.New(apperr.KindInput, "path is required")
	}
	gray, err := s.cache.Load(path)
	if err != nil {
		return nil, apperr.Input(fmt.Sprintf("failed to load scan %s", path), err)
	}
	return gray, nil
}

// === Scan Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

type loadResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.load(a.Path); err != nil {
		return nil, err
	}
	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return loadResult{Path: a.Path, Width: dims.Width, Height: dims.Height}, nil
}

type detectWallsArgs struct {
	Path          string `json:"path"`
	DetectSymbols *bool  `json:"detect_symbols,omitempty"`
	TextMask      *bool  `json:"text_mask,omitempty"`
}

// options applies per-call overrides to the server defaults.
func (s *Server) options(detectSymbols, textMask *bool) pipeline.Options {
	opts := s.opts
	if detectSymbols != nil {
		opts.DetectSymbols = *detectSymbols
	}
	if textMask != nil && !*textMask {
		opts.TextMasker = nil
	}
	return opts
}

func (s *Server) handleDetectWalls(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectWallsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	gray, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, gray, s.options(a.DetectSymbols, a.TextMask))
}

type detectSymbolsArgs struct {
	Path      string `json:"path"`
	MinRadius int    `json:"min_radius,omitempty"`
	MaxRadius int    `json:"max_radius,omitempty"`
}

type symbolsResult struct {
	Symbols []detection.Symbol `json:"symbols"`
	Count   int                `json:"count"`
}

func (s *Server) handleDetectSymbols(args json.RawMessage) (interface{}, error) {
	var a detectSymbolsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	gray, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.opts.Lights
	if a.MinRadius > 0 {
		opts.MinRadius = a.MinRadius
	}
	if a.MaxRadius > 0 {
		opts.MaxRadius = a.MaxRadius
	}
	symbols, err := detection.DetectLights(gray, opts)
	if err != nil {
		return nil, apperr.Input("symbol detection rejected its input", err)
	}
	return symbolsResult{Symbols: symbols, Count: len(symbols)}, nil
}

type maskResult struct {
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	ImageBase64      string   `json:"image_base64"`
	MimeType         string   `json:"mime_type"`
	ForegroundPixels int      `json:"foreground_pixels"`
	Degraded         []string `json:"degraded,omitempty"`
}

type cleanArgs struct {
	Path     string `json:"path"`
	TextMask *bool  `json:"text_mask,omitempty"`
}

func (s *Server) clean(ctx context.Context, args json.RawMessage) (*imaging.Mask, []string, error) {
	var a cleanArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, nil, err
	}
	gray, err := s.load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.Clean(ctx, gray, s.options(nil, a.TextMask))
}

func (s *Server) handlePreprocess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	cleaned, degraded, err := s.clean(ctx, args)
	if err != nil {
		return nil, err
	}
	encoded, err := cleaned.EncodePNGBase64()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRender, err, "failed to encode cleaned image")
	}
	return maskResult{
		Width:            cleaned.Width,
		Height:           cleaned.Height,
		ImageBase64:      encoded,
		MimeType:         "image/png",
		ForegroundPixels: cleaned.Count(),
		Degraded:         degraded,
	}, nil
}

func (s *Server) handleEdgeDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	cleaned, _, err := s.clean(ctx, args)
	if err != nil {
		return nil, err
	}
	cfg := s.opts.Walls
	return imaging.EdgeDetect(cleaned, cfg.EdgeBlurRadius, cfg.CannyLow, cfg.CannyHigh)
}

type renderOverlayArgs struct {
	Path          string   `json:"path"`
	DetectSymbols *bool    `json:"detect_symbols,omitempty"`
	TextMask      *bool    `json:"text_mask,omitempty"`
	Region        string   `json:"region,omitempty"`
	X1            *float64 `json:"x1,omitempty"`
	Y1            *float64 `json:"y1,omitempty"`
	X2            *float64 `json:"x2,omitempty"`
	Y2            *float64 `json:"y2,omitempty"`
	Scale         float64  `json:"scale,omitempty"`
}

type overlayResult struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	ImageBase64 string      `json:"image_base64"`
	MimeType    string      `json:"mime_type"`
	Stats       interface{} `json:"detection_stats"`
}

func (s *Server) handleRenderOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	gray, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, gray, s.options(a.DetectSymbols, a.TextMask))
	if err != nil {
		return nil, err
	}

	var img image.Image
	img, err = render.Overlay(gray, res.Walls, res.DetectedSymbols, render.DefaultOverlayOptions())
	if err != nil {
		return nil, err
	}

	region, err := a.region(res.Metadata.Width, res.Metadata.Height)
	if err != nil {
		return nil, err
	}
	if region != img.Bounds() || (a.Scale > 0 && a.Scale != 1) {
		cropped, err := imaging.Crop(img, region, a.Scale)
		if err != nil {
			return nil, apperr.Input("invalid overlay region", err)
		}
		img = cropped
	}

	encoded, err := render.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return overlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Stats:       res.Metadata.DetectionStats,
	}, nil
}

// region resolves the zoom area: a named quadrant, a percentage box, or
// the whole image.
func (a renderOverlayArgs) region(width, height int) (image.Rectangle, error) {
	box := a.X1 != nil || a.Y1 != nil || a.X2 != nil || a.Y2 != nil
	switch {
	case a.Region != "" && box:
		return image.Rectangle{}, apperr.New(apperr.KindInput, "give either region or x1/y1/x2/y2, not both")
	case a.Region != "":
		r, err := imaging.QuadrantRect(width, height, a.Region)
		if err != nil {
			return image.Rectangle{}, apperr.Input("invalid overlay region", err)
		}
		return r, nil
	case box:
		if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
			return image.Rectangle{}, apperr.New(apperr.KindInput, "x1, y1, x2 and y2 are all required")
		}
		r, err := imaging.PercentRect(width, height, *a.X1, *a.Y1, *a.X2, *a.Y2)
		if err != nil {
			return image.Rectangle{}, apperr.Input("invalid overlay region", err)
		}
		return r, nil
	default:
		return image.Rect(0, 0, width, height), nil
	}
}
