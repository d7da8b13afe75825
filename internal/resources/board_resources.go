package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/server"
)

// RegisterBoardResources registers the read-only board resources.
func RegisterBoardResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	boardsResource := mcp.NewResource(
		"trello://boards",
		"Trello Boards",
		mcp.WithResourceDescription("Boards of the authenticated Trello member"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(boardsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleBoards(ctx, request, sc)
	})

	return nil
}

// handleBoards returns the boards of the authenticated member.
func handleBoards(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.TrelloClient()
	if err != nil {
		return nil, err
	}

	boards, err := client.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	jsonData, err := json.MarshalIndent(boards, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
