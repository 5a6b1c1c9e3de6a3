package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/floorplan-walls/internal/apperr"
	"github.com/ironsheep/floorplan-walls/internal/imaging"
	"github.com/ironsheep/floorplan-walls/internal/pipeline"
)

// createTestImageFile writes white paper with the given rectangles inked
// black to a PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, ink ...image.Rectangle) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for _, r := range ink {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "plan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createWallPlanFile has one horizontal and one vertical 12 px wall.
func createWallPlanFile(t *testing.T) string {
	return createTestImageFile(t, 300, 200,
		image.Rect(30, 40, 270, 52),
		image.Rect(140, 80, 152, 180),
	)
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// contentText returns the JSON text of a successful tool response.
func contentText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	return content[0]["text"].(string)
}

func TestHandleToolsCall_Load(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	var got loadResult
	if err := json.Unmarshal([]byte(contentText(t, callTool(t, s, "floorplan_load", map[string]interface{}{"path": path}))), &got); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if got.Width != 300 || got.Height != 200 || got.Path != path {
		t.Errorf("got %+v, want 300x200 at %s", got, path)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache length: got %d, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_DetectWalls(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	text := contentText(t, callTool(t, s, "floorplan_detect_walls", map[string]interface{}{"path": path}))

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	for _, key := range []string{"metadata", "walls", "detected_symbols"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("result missing %q", key)
		}
	}

	var res pipeline.Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if len(res.Walls) == 0 {
		t.Error("no walls detected")
	}
	if res.Metadata.DetectionStats.TotalWalls != len(res.Walls) {
		t.Errorf("total_walls %d, walls %d", res.Metadata.DetectionStats.TotalWalls, len(res.Walls))
	}
}

func TestHandleToolsCall_DetectWalls_SymbolOverride(t *testing.T) {
	s := New(testOptions())
	path := createTestImageFile(t, 200, 200, image.Rect(20, 20, 180, 32))

	// Symbols are off by server default; the argument turns them on.
	result, err := s.executeTool(context.Background(), "floorplan_detect_walls",
		json.RawMessage(`{"path":"`+path+`","detect_symbols":true}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	res := result.(*pipeline.Result)
	if res.DetectedSymbols == nil {
		t.Error("detected_symbols should be an empty list, not null")
	}
}

func TestHandleToolsCall_DetectSymbols(t *testing.T) {
	s := New(testOptions())
	path := createTestImageFile(t, 100, 100)

	result, err := s.executeTool(context.Background(), "floorplan_detect_symbols",
		json.RawMessage(`{"path":"`+path+`","min_radius":8,"max_radius":20}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	got := result.(symbolsResult)
	if got.Count != 0 || len(got.Symbols) != 0 {
		t.Errorf("blank paper: got %d symbols", got.Count)
	}
}

func TestHandleToolsCall_DetectSymbols_InvalidRadius(t *testing.T) {
	s := New(testOptions())
	path := createTestImageFile(t, 100, 100)

	_, err := s.executeTool(context.Background(), "floorplan_detect_symbols",
		json.RawMessage(`{"path":"`+path+`","min_radius":30,"max_radius":10}`))
	if !apperr.IsKind(err, apperr.KindInput) {
		t.Errorf("got %v, want an input error", err)
	}
}

func TestHandleToolsCall_Preprocess(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	result, err := s.executeTool(context.Background(), "floorplan_preprocess",
		json.RawMessage(`{"path":"`+path+`"}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	got := result.(maskResult)
	if got.Width != 300 || got.Height != 200 {
		t.Errorf("size: got %dx%d, want 300x200", got.Width, got.Height)
	}
	if got.MimeType != "image/png" || got.ImageBase64 == "" {
		t.Errorf("image: got %q with %d bytes", got.MimeType, len(got.ImageBase64))
	}
	// Two 12 px walls: 240x12 + 12x100 ink pixels, give or take the
	// threshold border.
	if got.ForegroundPixels < 3000 || got.ForegroundPixels > 5000 {
		t.Errorf("foreground pixels: got %d, want about 4080", got.ForegroundPixels)
	}
	if len(got.Degraded) != 0 {
		t.Errorf("degraded: got %v", got.Degraded)
	}
}

func TestHandleToolsCall_Preprocess_DegradedMasker(t *testing.T) {
	opts := testOptions()
	opts.TextMasker = pipeline.TextMaskerFunc(func(ctx context.Context, gray *image.Gray) (*imaging.Mask, error) {
		return nil, os.ErrNotExist
	})
	s := New(opts)
	path := createWallPlanFile(t)

	result, err := s.executeTool(context.Background(), "floorplan_preprocess",
		json.RawMessage(`{"path":"`+path+`"}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if got := result.(maskResult).Degraded; len(got) != 1 || got[0] != pipeline.DegradedTextMask {
		t.Errorf("degraded: got %v", got)
	}

	// text_mask=false skips the masker entirely.
	result, err = s.executeTool(context.Background(), "floorplan_preprocess",
		json.RawMessage(`{"path":"`+path+`","text_mask":false}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if got := result.(maskResult).Degraded; len(got) != 0 {
		t.Errorf("degraded without masker: got %v", got)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	result, err := s.executeTool(context.Background(), "floorplan_edge_detect",
		json.RawMessage(`{"path":"`+path+`"}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	got := result.(*imaging.EdgeDetectResult)
	if got.Width != 300 || got.Height != 200 {
		t.Errorf("size: got %dx%d, want 300x200", got.Width, got.Height)
	}
	if got.EdgePixels == 0 {
		t.Error("walls should produce edges")
	}
}

func TestHandleToolsCall_RenderOverlay(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	tests := []struct {
		name          string
		args          string
		width, height int
	}{
		{"whole scan", `{"path":"` + path + `"}`, 300, 200},
		{"quadrant", `{"path":"` + path + `","region":"top-left"}`, 150, 100},
		{"quadrant scaled", `{"path":"` + path + `","region":"top-left","scale":2}`, 300, 200},
		{"percent box", `{"path":"` + path + `","x1":10,"y1":10,"x2":60,"y2":35}`, 150, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.executeTool(context.Background(), "floorplan_render_overlay", json.RawMessage(tt.args))
			if err != nil {
				t.Fatalf("executeTool failed: %v", err)
			}
			got := result.(overlayResult)
			if got.Width != tt.width || got.Height != tt.height {
				t.Errorf("size: got %dx%d, want %dx%d", got.Width, got.Height, tt.width, tt.height)
			}
			if got.ImageBase64 == "" {
				t.Error("empty image")
			}
		})
	}
}

func TestHandleToolsCall_RenderOverlay_BadRegion(t *testing.T) {
	s := New(testOptions())
	path := createWallPlanFile(t)

	tests := []struct {
		name string
		args string
	}{
		{"unknown region", `{"path":"` + path + `","region":"middle"}`},
		{"region and box", `{"path":"` + path + `","region":"center","x1":0,"y1":0,"x2":50,"y2":50}`},
		{"partial box", `{"path":"` + path + `","x1":0,"y1":0}`},
		{"inverted box", `{"path":"` + path + `","x1":60,"y1":0,"x2":10,"y2":50}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.executeTool(context.Background(), "floorplan_render_overlay", json.RawMessage(tt.args))
			if !apperr.IsKind(err, apperr.KindInput) {
				t.Errorf("got %v, want an input error", err)
			}
		})
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(testOptions())

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			resp := callTool(t, s, tool.Name, map[string]interface{}{"path": "/nonexistent/plan.png"})
			if resp.Error == nil {
				t.Fatal("expected an error for a missing file")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
			if data, _ := resp.Error.Data.(string); !strings.HasPrefix(data, "input:") {
				t.Errorf("Error data: got %q, want an input error", data)
			}
		})
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	s := New(testOptions())

	_, err := s.executeTool(context.Background(), "floorplan_load", nil)
	if !apperr.IsKind(err, apperr.KindInput) {
		t.Errorf("got %v, want an input error", err)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(testOptions())
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	}

	resp := s.handleToolsCall(context.Background(), req)

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want code -32602", resp.Error)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(testOptions())

	_, err := s.executeTool(context.Background(), "unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(testOptions())

	_, err := s.executeTool(context.Background(), "floorplan_load", json.RawMessage(`{invalid`))
	if !apperr.IsKind(err, apperr.KindInput) {
		t.Errorf("got %v, want an input error", err)
	}
}
