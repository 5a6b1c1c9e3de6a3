package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the floor plan scan",
	}
}

func textMaskProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Remove label text before detection using the configured masker. Default true",
		"default":     true,
	}
}

func detectSymbolsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Also detect circular light fixtures. Defaults to the server setting",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "floorplan_load",
			Description: "Load a floor plan scan and return its pixel dimensions. The decoded scan is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "floorplan_detect_walls",
			Description: "Detect wall segments with the hybrid ridge and parallel-line pipeline. " +
				"Coordinates are percentages of the image size, origin top-left. " +
				"Each wall reports its source: ridge, parallel or dual_confirmed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty(),
					"detect_symbols": detectSymbolsProperty(),
					"text_mask":      textMaskProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_detect_symbols",
			Description: "Detect circular light fixtures. Centers are percentages of the image size; radius is in pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest fixture radius in pixels",
					},
					"max_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Largest fixture radius in pixels",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_preprocess",
			Description: "Return the cleaned binary ink mask (adaptive threshold, text removal, opening, small-blob removal) as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"text_mask": textMaskProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_edge_detect",
			Description: "Return the Canny edge map of the cleaned mask, the input of parallel-line detection, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"text_mask": textMaskProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "floorplan_render_overlay",
			Description: "Run wall detection and draw the result over the faded scan, coloured by source. " +
				"Optionally zoom into a named region or a percentage box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty(),
					"detect_symbols": detectSymbolsProperty(),
					"text_mask":      textMaskProperty(),
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Named region to zoom into",
						"enum": []string{
							"top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half", "center",
						},
					},
					"x1": map[string]interface{}{
						"type":        "number",
						"description": "Left edge of the zoom box in percent of width",
					},
					"y1": map[string]interface{}{
						"type":        "number",
						"description": "Top edge of the zoom box in percent of height",
					},
					"x2": map[string]interface{}{
						"type":        "number",
						"description": "Right edge of the zoom box in percent of width",
					},
					"y2": map[string]interface{}{
						"type":        "number",
						"description": "Bottom edge of the zoom box in percent of height",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned image. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
