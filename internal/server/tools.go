package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Annotations
		{
			Name:        "cvat_summary",
			Description: "Parse a CVAT XML export and return task metadata, job segments and annotation counts per label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the CVAT XML export"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "cvat_url",
			Description: "Build a CVAT review link. Give an image basename, a frame id or a job id; with none of them the bare base URL is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the CVAT XML export"),
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Image basename, resolved to its frame",
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame id, resolved to its job",
					},
					"job": map[string]interface{}{
						"type":        "integer",
						"description": "Job id; the link carries no frame parameter",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "labelme_info",
			Description: "Read a LabelMe JSON file and return the image size, shape labels and polygon count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the LabelMe JSON file"),
				},
				"required": []string{"path"},
			},
		},

		// Datasets
		{
			Name:        "attri_select",
			Description: "Load an attribute table (JSON object of key -> attributes) and return the items matching every condition, e.g. [\"score > 0.5\", \"label == cat\"].",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the attribute table JSON file"),
					"conditions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Conditions \"<attr> <op> <value>\" with op one of == != < <= > >=. Empty selects every item",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "fs_scan",
			Description: "Recursively list the files under a directory whose name ends with an extension.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"root": pathProperty("Directory to scan"),
					"ext": map[string]interface{}{
						"type":        "string",
						"description": "File suffix to match, e.g. \".jpg\". Default matches every file",
						"default":     "",
					},
					"follow_links": map[string]interface{}{
						"type":        "boolean",
						"description": "Descend into symlinked directories. Default false",
						"default":     false,
					},
				},
				"required": []string{"root"},
			},
		},
		{
			Name:        "file_read",
			Description: "Read a .txt (list of lines), .json or .yaml file and return its content.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the file"),
				},
				"required": []string{"path"},
			},
		},

		// Documents and color
		{
			Name:        "pdf_info",
			Description: "Return the document information and page list of a PDF.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the PDF"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "color_named",
			Description: "Without a color, list the named colors. With a name or hex string, return that color as hex, RGB, BGR and 8-bit HSV.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color name (e.g. \"purple\") or hex (e.g. \"#FF8040\")",
					},
				},
			},
		},
		{
			Name:        "image_recolor",
			Description: "Tint an image towards a hue (8-bit HSV scale, 0-180) and save it. Optionally restrict the change to the polygons of a LabelMe file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty("Absolute path to the source image"),
					"output": pathProperty("Where to save the recolored image"),
					"hue": map[string]interface{}{
						"type":        "number",
						"description": "Target hue, 0-180",
					},
					"hue_range": map[string]interface{}{
						"type":        "number",
						"description": "Allowed spread around the hue. Default 5",
						"default":     5,
					},
					"labelme": pathProperty("Optional LabelMe JSON whose polygons mask the change"),
				},
				"required": []string{"path", "output", "hue"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return result(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
