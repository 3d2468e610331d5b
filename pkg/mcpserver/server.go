// Package mcpserver exposes the research, generation and edit pipelines as
// Model Context Protocol tools. Every call is stateless.
package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/newsletter-helper/pkg/studio"
)

// Version is the MCP server version.
const Version = "0.1.0"

type Server struct {
	researcher studio.Researcher
	writer     studio.Writer
	server     *mcp.Server
}

func New(researcher studio.Researcher, writer studio.Writer) (*Server, error) {
	if researcher == nil || writer == nil {
		return nil, errors.New("mcp: researcher and writer are required")
	}

	s := &Server{
		researcher: researcher,
		writer:     writer,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "newsletter-helper",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler for mounting on an existing router.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
