package list_tools

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

// RegisterListTools registers all list-related tools with the MCP server
func RegisterListTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getListTool := mcp.NewTool("trello_get_list",
		mcp.WithDescription("Get details of a specific list"),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("The ID of the list to retrieve"),
		),
	)

	s.AddTool(getListTool, common.InstrumentedToolHandlerWithOperation("trello_get_list", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			listID, err := common.RequireString(args, "listId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			list, err := client.GetList(ctx, listID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get list: %v", err)), nil
			}

			result, _ := json.MarshalIndent(list, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getListCardsTool := mcp.NewTool("trello_get_list_cards",
		mcp.WithDescription("List the cards in a list"),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("The ID of the list"),
		),
	)

	s.AddTool(getListCardsTool, common.InstrumentedToolHandlerWithOperation("trello_get_list_cards", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			listID, err := common.RequireString(args, "listId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			cards, err := client.GetListCards(ctx, listID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get list cards: %v", err)), nil
			}

			result, _ := json.MarshalIndent(cards, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	// Register list creation only if not in read-only mode
	if !readOnly {
		createListTool := mcp.NewTool("trello_create_list",
			mcp.WithDescription("Create a new list on a board"),
			mcp.WithString("boardId",
				mcp.Required(),
				mcp.Description("The ID of the board to create the list on"),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("The name of the new list"),
			),
		)

		s.AddTool(createListTool, common.InstrumentedToolHandlerWithOperation("trello_create_list", instrumentation.OperationCreate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args, _ := request.Params.Arguments.(map[string]interface{})

				boardID, err := common.RequireString(args, "boardId")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				name, err := common.RequireString(args, "name")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				client, err := sc.TrelloClient()
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				list, err := client.CreateList(ctx, boardID, name)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to create list: %v", err)), nil
				}

				result, _ := json.MarshalIndent(list, "", "  ")
				return mcp.NewToolResultText(fmt.Sprintf("List created successfully:\n%s", string(result))), nil
			}))
	}

	return nil
}
