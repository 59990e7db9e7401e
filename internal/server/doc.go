// Package server exposes the dataset tools over MCP (Model Context
// Protocol), so an assistant can inspect annotation exports, attribute
// tables and PDFs without shelling out.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Annotations:
//   - cvat_summary: image, annotation and label counts of a CVAT export
//   - cvat_url: review link for a job, frame or image basename
//   - labelme_info: size, labels and polygon count of a LabelMe file
//
// Datasets:
//   - attri_select: filter an attribute table by conditions
//   - fs_scan: list files under a directory by extension
//   - file_read: read a .txt, .json or .yaml file
//
// Documents and color:
//   - pdf_info: page list and metadata of a PDF
//   - color_named: named color table, or one color in every notation
//   - image_recolor: tint an image towards a hue and save the result
//
// Parsed CVAT exports and decoded images are cached for the lifetime of the
// process, keyed by path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string in data.
package server
