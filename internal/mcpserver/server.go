// Package mcpserver wires ToonForge's built-in tools into an MCP server from
// the official MCP Go SDK (github.com/modelcontextprotocol/go-sdk).
//
// Each tool handler is wrapped with per-call observability: an OTel span, a
// call counter and latency histogram, and one structured log line per
// outcome. Tool handlers themselves are total functions returning envelopes;
// the wrapper only translates their result into MCP content.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/toonforge/internal/observe"
	"github.com/MrWong99/toonforge/internal/tools"
	"github.com/MrWong99/toonforge/pkg/toon"
)

// Server hosts the ToonForge tools over the Model Context Protocol.
type Server struct {
	srv     *mcpsdk.Server
	log     *slog.Logger
	metrics *observe.Metrics
	names   []string
}

// New creates a Server exposing the given tools under the given
// implementation name and version.
func New(name, version string, log *slog.Logger, metrics *observe.Metrics, ts []tools.Tool) *Server {
	s := &Server{
		srv:     mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, nil),
		log:     log,
		metrics: metrics,
	}
	for _, t := range ts {
		s.register(t)
	}
	return s
}

// ToolNames returns the names of the registered tools in registration order.
func (s *Server) ToolNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Run serves MCP over the given transport until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.srv.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcpserver: serve: %w", err)
	}
	return nil
}

// RunStdio serves MCP over stdin/stdout, the transport a host process uses to
// talk to a spawned tool server.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) register(t tools.Tool) {
	def := &mcpsdk.Tool{
		Name:        t.Definition.Name,
		Description: t.Definition.Description,
		InputSchema: t.Definition.InputSchema,
	}
	s.srv.AddTool(def, s.wrap(t))
	s.names = append(s.names, t.Definition.Name)
}

// wrap adapts a tool handler to the SDK's handler shape, recording the span,
// metrics, and log line for every call.
func (s *Server) wrap(t tools.Tool) mcpsdk.ToolHandler {
	name := t.Definition.Name
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		start := time.Now()
		ctx, span := observe.StartSpan(ctx, "tool "+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(observe.Attr("tool", name)),
		)
		defer span.End()

		// Per-call log lines carry the span's trace_id/span_id so they can
		// be joined to the trace.
		log := observe.Logger(ctx, s.log)

		args, err := rawArguments(req)
		if err != nil {
			s.metrics.RecordToolCall(ctx, name, "error", time.Since(start).Seconds())
			log.Error("tool call rejected", "tool", name, "error", err)
			return errorResult(err), nil
		}

		out, err := t.Handler(ctx, args)
		elapsed := time.Since(start)
		if err != nil {
			s.metrics.RecordToolCall(ctx, name, "error", elapsed.Seconds())
			log.Error("tool call failed", "tool", name, "error", err, "duration", elapsed)
			return errorResult(err), nil
		}

		status := envelopeStatus(out)
		s.metrics.RecordToolCall(ctx, name, status, elapsed.Seconds())
		log.Info("tool call completed", "tool", name, "status", status, "duration", elapsed)

		text, err := resultText(out)
		if err != nil {
			return errorResult(err), nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		}, nil
	}
}

// rawArguments extracts the call arguments as a JSON document. Raw tool
// handlers receive them undecoded from the SDK; a missing argument object
// becomes the empty object.
func rawArguments(req *mcpsdk.CallToolRequest) (string, error) {
	a := req.Params.Arguments
	if len(a) == 0 {
		return "{}", nil
	}
	return string(a), nil
}

// resultText renders a handler result as wire text: TOON output passes
// through as-is, structured envelopes are marshalled to JSON with field
// order preserved.
func resultText(out any) (string, error) {
	if text, ok := out.(string); ok {
		return text, nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return string(b), nil
}

// envelopeStatus sniffs the status tag out of a handler result for metrics
// and logging. It understands both representations the formatter produces.
func envelopeStatus(out any) string {
	switch v := out.(type) {
	case *toon.Map:
		if s, ok := v.Get("status"); ok {
			if str, isStr := s.(string); isStr {
				return str
			}
		}
	case string:
		if strings.HasPrefix(v, "status: ") {
			line, _, _ := strings.Cut(v, "\n")
			return strings.TrimPrefix(line, "status: ")
		}
	}
	return "success"
}

// errorResult reports an infrastructure failure (not a tool-domain error)
// through the protocol-level error channel.
func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
