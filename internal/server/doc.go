// Package server implements the MCP (Model Context Protocol) server that
// exposes floor plan wall detection as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - floorplan_load: Load a scan and report its size
//   - floorplan_detect_walls: Full pipeline, returns the result document
//   - floorplan_detect_symbols: Light fixtures only
//   - floorplan_preprocess: Cleaned ink mask as base64 PNG
//   - floorplan_edge_detect: Canny edges of the cleaned mask as base64 PNG
//   - floorplan_render_overlay: Walls drawn over the scan, optionally zoomed
//
// Detection tools run with the pipeline.Options the server was created
// with; detect_symbols and text_mask arguments override them per call.
//
// # Image Caching
//
// Decoded scans are cached by path for the lifetime of the process, so a
// client can call several tools on the same plan without decoding it again.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The error string, prefixed with its kind (input, config, render)
//
// # Usage
//
//	srv := server.New(pipeline.DefaultOptions())
//	if err := srv.Run(ctx); err != nil {
//	    logger.WithError(err).Fatal("server stopped")
//	}
package server
