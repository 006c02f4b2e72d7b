// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the sitemap of a content tree via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/siteservice"
)

// SitemapURI addresses the sitemap resource.
const SitemapURI = "folio://sitemap.json"

// Server wraps the MCP server with the sitemap tools.
type Server struct {
	mcp *server.MCPServer
	svc *siteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *siteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_sitemap",
		mcp.WithDescription("Return the sitemap of the content tree as the JSON array [main, footer]. "+
			"Entries use the short keys t (title), a (description), p (link), c (children), "+
			"h (hidden), m (modified) and s (subsection)."),
		mcp.WithBoolean("rebuild", mcp.Description("Rebuild from disk before returning")),
	), s.getSitemap)

	s.mcp.AddTool(mcp.NewTool("read_metadata",
		mcp.WithDescription("Read the merged metadata record of a document or directory. "+
			"Call get_metadata_format first to learn how metadata is written."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the content root (empty for the root)")),
	), s.readMetadata)

	s.mcp.AddTool(mcp.NewTool("get_metadata_format",
		mcp.WithDescription("Returns the reference for document headers and directory metadata files."),
	), s.getMetadataFormat)

	s.mcp.AddResource(
		mcp.NewResource(SitemapURI, "Sitemap",
			mcp.WithResourceDescription("Current sitemap of the content tree."),
			mcp.WithMIMEType("application/json"),
		),
		s.readSitemapResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// snapshot returns the current build, building first if there is none or
// a rebuild is requested.
func (s *Server) snapshot(ctx context.Context, rebuild bool) (*siteservice.Snapshot, error) {
	if snap := s.svc.Current(); snap != nil && !rebuild {
		return snap, nil
	}
	return s.svc.Rebuild(ctx)
}

func (s *Server) getSitemap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.snapshot(ctx, req.GetBool("rebuild", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(snap.Payload)), nil
}

func (s *Server) readMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Metadata(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMetadataFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MetadataFormat), nil
}

func (s *Server) readSitemapResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SitemapURI,
			MIMEType: "application/json",
			Text:     string(snap.Payload),
		},
	}, nil
}
