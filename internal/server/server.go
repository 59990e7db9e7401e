package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/cvat"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Options configures a Server.
type Options struct {
	// CVATBaseURL overrides the base URL derived from export files.
	CVATBaseURL string
}

// Server answers MCP tool calls over the toolkit packages. Parsed CVAT
// exports and decoded images are cached for the life of the process.
type Server struct {
	opts  Options
	cache *imaging.ImageCache

	mu       sync.Mutex
	projects map[string]*cvat.Project
}

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"

	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000

	maxRequestSize = 1 << 20
)

// MCPRequest is one JSON-RPC request line.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse is one JSON-RPC response line. Exactly one of Result and Error is set.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is the error member of a response.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New returns a Server with empty caches.
func New(opts Options) *Server {
	return &Server{
		opts:     opts,
		cache:    imaging.NewImageCache(),
		projects: make(map[string]*cvat.Project),
	}
}

// Run serves stdin to stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads line-delimited requests from r until EOF and writes one
// response line per request to w. Unparseable lines are logged and skipped.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	out := json.NewEncoder(w)

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.WithError(err).Warn("Skipping unparseable request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := out.Encode(resp); err != nil {
			log.WithFields(log.Fields{
				"method": req.Method,
				"id":     req.ID,
			}).WithError(err).Error("Writing response")
		}
	}

	if err := in.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}

func result(id interface{}, v interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: jsonrpcVersion, ID: id, Result: v}
}

func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	log.WithFields(log.Fields{
		"method": req.Method,
		"id":     req.ID,
	}).Debug("Request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return result(req.ID, map[string]interface{}{})
	}
	return s.errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method, "")
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return result(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "cvdata-tools",
			"version": Version,
		},
	})
}

// project returns the parsed export at path, parsing it on first use.
func (s *Server) project(path string) (*cvat.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.projects[path]; ok {
		return p, nil
	}
	p, err := cvat.Open(path, cvat.Options{BaseURL: s.opts.CVATBaseURL})
	if err != nil {
		return nil, err
	}
	s.projects[path] = p
	return p, nil
}
