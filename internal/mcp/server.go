// Package mcp provides an MCP (Model Context Protocol) server for Beacon.
// MCP enables LLM agents to drive the planner through a standardized
// protocol: line-delimited JSON-RPC 2.0 over stdin/stdout.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/beaconhq/beacon/internal/handler"
)

const protocolVersion = "2024-11-05"

// Server is an MCP server over the Beacon handler layer.
type Server struct {
	handler *handler.Handler
	in      io.Reader
	out     io.Writer
	logger  *log.Logger

	// mu serializes request dispatch; the handler itself is stateless but
	// tool calls must not interleave writes on out.
	mu sync.Mutex
}

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  *json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServerInfo contains server identity information.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities defines what the server can do.
type ServerCapabilities struct {
	Tools   *ToolsCapability   `json:"tools,omitempty"`
	Prompts *PromptsCapability `json:"prompts,omitempty"`
}

// ToolsCapability indicates tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability indicates prompt support.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema defines the JSON schema for tool input.
type InputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent represents content in a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewServer creates a new MCP server over stdin/stdout.
func NewServer(h *handler.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "[beacon-mcp] ", log.LstdFlags)
	}
	return &Server{
		handler: h,
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  logger,
	}
}

// Run starts the server's main loop. It returns when stdin closes or a
// SIGINT/SIGTERM arrives.
func (s *Server) Run() error {
	s.logger.Printf("server starting (database: %s)", s.handler.Store().Path())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		// MCP uses line-delimited JSON; allow large tool arguments.
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case sig := <-sigs:
			s.logger.Printf("received %s, shutting down", sig)
			return nil
		case err := <-errc:
			if err != nil {
				s.logger.Printf("scanner error: %v", err)
				return err
			}
			s.logger.Printf("stdin closed, shutting down")
			return nil
		case line := <-lines:
			if line == "" {
				continue
			}
			var req Request
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				s.logger.Printf("parse error: %v", err)
				s.sendError(nil, -32700, "Parse error", err.Error())
				continue
			}
			s.handleRequest(&req)
		}
	}
}

func (s *Server) handleRequest(req *Request) {
	isNotification := req.ID == nil

	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Client notification, no response needed.
		return
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(req)
	case "prompts/list":
		s.handlePromptsList(req)
	case "prompts/get":
		s.handlePromptsGet(req)
	case "ping":
		s.sendResult(req.ID, map[string]interface{}{})
	case "notifications/cancelled":
		return
	default:
		if !isNotification {
			s.sendError(req.ID, -32601, "Method not found", req.Method)
		}
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": ServerCapabilities{
			Tools:   &ToolsCapability{},
			Prompts: &PromptsCapability{},
		},
		"serverInfo": ServerInfo{
			Name:    "beacon-mcp",
			Version: "0.1.0",
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsCall(req *Request) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}

	s.mu.Lock()
	text, err := s.callTool(params.Name, params.Arguments)
	s.mu.Unlock()

	if err != nil {
		s.sendError(req.ID, -32603, err.Error(), nil)
		return
	}
	s.sendResult(req.ID, ToolResult{
		Content: []ToolContent{{Type: "text", Text: text}},
	})
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintln(s.out, string(data))
}
