package board_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/instrumentation"
	"github.com/trellofewer/trellofewer/internal/server"
	"github.com/trellofewer/trellofewer/internal/tools/common"
)

// RegisterBoardTools registers all board-related tools with the MCP server
func RegisterBoardTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listBoardsTool := mcp.NewTool("trello_list_boards",
		mcp.WithDescription("List all open boards the authenticated member can access"),
	)

	s.AddTool(listBoardsTool, common.InstrumentedToolHandlerWithOperation("trello_list_boards", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			boards, err := client.ListBoards(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list boards: %v", err)), nil
			}

			result, _ := json.MarshalIndent(boards, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getBoardTool := mcp.NewTool("trello_get_board",
		mcp.WithDescription("Get details of a specific board"),
		mcp.WithString("boardId",
			mcp.Required(),
			mcp.Description("The ID of the board to retrieve"),
		),
	)

	s.AddTool(getBoardTool, common.InstrumentedToolHandlerWithOperation("trello_get_board", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			boardID, err := common.RequireString(args, "boardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			board, err := client.GetBoard(ctx, boardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get board: %v", err)), nil
			}

			result, _ := json.MarshalIndent(board, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getBoardListsTool := mcp.NewTool("trello_get_board_lists",
		mcp.WithDescription("List the lists on a board"),
		mcp.WithString("boardId",
			mcp.Required(),
			mcp.Description("The ID of the board"),
		),
	)

	s.AddTool(getBoardListsTool, common.InstrumentedToolHandlerWithOperation("trello_get_board_lists", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			boardID, err := common.RequireString(args, "boardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			lists, err := client.GetBoardLists(ctx, boardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get board lists: %v", err)), nil
			}

			result, _ := json.MarshalIndent(lists, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getBoardLabelsTool := mcp.NewTool("trello_get_board_labels",
		mcp.WithDescription("List the labels defined on a board"),
		mcp.WithString("boardId",
			mcp.Required(),
			mcp.Description("The ID of the board"),
		),
	)

	s.AddTool(getBoardLabelsTool, common.InstrumentedToolHandlerWithOperation("trello_get_board_labels", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			boardID, err := common.RequireString(args, "boardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			labels, err := client.GetBoardLabels(ctx, boardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get board labels: %v", err)), nil
			}

			result, _ := json.MarshalIndent(labels, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getBoardMembersTool := mcp.NewTool("trello_get_board_members",
		mcp.WithDescription("List the members of a board"),
		mcp.WithString("boardId",
			mcp.Required(),
			mcp.Description("The ID of the board"),
		),
	)

	s.AddTool(getBoardMembersTool, common.InstrumentedToolHandlerWithOperation("trello_get_board_members", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			boardID, err := common.RequireString(args, "boardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			members, err := client.GetBoardMembers(ctx, boardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get board members: %v", err)), nil
			}

			result, _ := json.MarshalIndent(members, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	return nil
}
