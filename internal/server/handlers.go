package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/cvdata-tools/internal/attri"
	"github.com/ironsheep/cvdata-tools/internal/cvat"
	"github.com/ironsheep/cvdata-tools/internal/fsutil"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/labelme"
	"github.com/ironsheep/cvdata-tools/internal/pdfedit"
)

// errMissingArg is returned when a required tool argument is empty.
var errMissingArg = errors.New("missing required argument")

// ToolCallParams is the params object of tools/call.
type ToolCallParams struct {
	Name      string          `json:"name"`
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	out, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return result(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(out)},
		},
	})
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Annotations
	case "cvat_summary":
		return s.handleCVATSummary(args)
	case "cvat_url":
		return s.handleCVATURL(args)
	case "labelme_info":
		return s.handleLabelMeInfo(args)

	// Datasets
	case "attri_select":
		return s.handleAttriSelect(args)
	case "fs_scan":
		return s.handleFSScan(args)
	case "file_read":
		return s.handleFileRead(args)

	// Documents and color
	case "pdf_info":
		return s.handlePDFInfo(args)
	case "color_named":
		return s.handleColorNamed(args)
	case "image_recolor":
		return s.handleImageRecolor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse builds an error reply. An empty data string is left out of the payload.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: jsonrpcVersion, ID: id, Error: e}
}

// mustMarshalJSON renders v as indented JSON, or "" if it cannot be marshalled.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodePath(args json.RawMessage) (string, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", err
	}
	if a.Path == "" {
		return "", fmt.Errorf("%w: path", errMissingArg)
	}
	return a.Path, nil
}

// === Annotation Handlers ===

type cvatSummaryResult struct {
	Name     string         `json:"name"`
	TaskID   int            `json:"task_id"`
	TaskName string         `json:"task_name"`
	URL      string         `json:"url"`
	Segments []cvat.Segment `json:"segments"`
	Stats    cvat.Stats     `json:"stats"`
}

func (s *Server) handleCVATSummary(args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	p, err := s.project(path)
	if err != nil {
		return nil, err
	}
	return &cvatSummaryResult{
		Name:     p.Name(),
		TaskID:   p.TaskID(),
		TaskName: p.TaskName(),
		URL:      p.URL(),
		Segments: p.Segments(),
		Stats:    p.Stats(),
	}, nil
}

type cvatURLArgs struct {
	Path  string `json:"path"`
	Image string `json:"image"`
	Frame *int   `json:"frame"`
	Job   *int   `json:"job"`
}

func (s *Server) handleCVATURL(args json.RawMessage) (interface{}, error) {
	var a cvatURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path", errMissingArg)
	}
	p, err := s.project(a.Path)
	if err != nil {
		return nil, err
	}

	var url string
	switch {
	case a.Image != "":
		url, err = p.ImageURL(a.Image)
	case a.Frame != nil:
		url, err = p.FrameURL(*a.Frame)
	case a.Job != nil:
		url = p.JobURL(*a.Job)
	default:
		url = p.URL()
	}
	if err != nil {
		return nil, err
	}
	return map[string]string{"url": url}, nil
}

type labelMeInfoResult struct {
	ImagePath string   `json:"image_path"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Labels    []string `json:"labels"`
	Polygons  int      `json:"polygons"`
	Shapes    int      `json:"shapes"`
}

func (s *Server) handleLabelMeInfo(args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	ann, err := labelme.Open(path)
	if err != nil {
		return nil, err
	}
	h, w := ann.ImageSize()
	return &labelMeInfoResult{
		ImagePath: ann.ImagePath,
		Width:     w,
		Height:    h,
		Labels:    ann.LabelNames(),
		Polygons:  len(ann.Contours()),
		Shapes:    len(ann.Shapes),
	}, nil
}

// === Dataset Handlers ===

type attriSelectArgs struct {
	Path       string   `json:"path"`
	Conditions []string `json:"conditions"`
}

func (s *Server) handleAttriSelect(args json.RawMessage) (interface{}, error) {
	var a attriSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path", errMissingArg)
	}

	conds := make([]attri.Condition, 0, len(a.Conditions))
	for _, expr := range a.Conditions {
		c, err := attri.ParseCondition(expr)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}

	m, err := attri.FromFile(a.Path)
	if err != nil {
		return nil, err
	}
	return m.Select(conds)
}

type fsScanArgs struct {
	Root        string `json:"root"`
	Ext         string `json:"ext"`
	FollowLinks bool   `json:"follow_links"`
}

func (s *Server) handleFSScan(args json.RawMessage) (interface{}, error) {
	var a fsScanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Root == "" {
		return nil, fmt.Errorf("%w: root", errMissingArg)
	}
	files, err := fsutil.MakeDataset(a.Root, a.Ext, a.FollowLinks)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count": len(files),
		"files": files,
	}, nil
}

func (s *Server) handleFileRead(args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	return fsutil.ReadFile(path)
}

// === Document and Color Handlers ===

type pdfInfoResult struct {
	Meta  pdfedit.Meta   `json:"meta"`
	Pages []pdfedit.Page `json:"pages"`
}

func (s *Server) handlePDFInfo(args json.RawMessage) (interface{}, error) {
	path, err := decodePath(args)
	if err != nil {
		return nil, err
	}
	op, err := pdfedit.Open(path)
	if err != nil {
		return nil, err
	}
	return &pdfInfoResult{Meta: op.Meta(), Pages: op.Pages()}, nil
}

type colorNamedArgs struct {
	Color string `json:"color"`
}

func (s *Server) handleColorNamed(args json.RawMessage) (interface{}, error) {
	var a colorNamedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		return map[string]interface{}{"names": imaging.NamedColors()}, nil
	}
	c, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	return imaging.Describe(a.Color, c), nil
}

type imageRecolorArgs struct {
	Path     string  `json:"path"`
	Output   string  `json:"output"`
	Hue      float64 `json:"hue"`
	HueRange float64 `json:"hue_range"`
	LabelMe  string  `json:"labelme"`
}

func (s *Server) handleImageRecolor(args json.RawMessage) (interface{}, error) {
	var a imageRecolorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Output == "" {
		return nil, fmt.Errorf("%w: path and output", errMissingArg)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := recolor(img, a.Hue, a.HueRange, a.LabelMe)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(out, a.Output); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"output": a.Output,
		"width":  out.Bounds().Dx(),
		"height": out.Bounds().Dy(),
		"masked": a.LabelMe != "",
	}, nil
}
