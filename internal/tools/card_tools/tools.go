package card_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/bulk"
	"github.com/trellofewer/trellofewer/internal/instrumentation"
	"github.com/trellofewer/trellofewer/internal/server"
	"github.com/trellofewer/trellofewer/internal/tools/common"
	"github.com/trellofewer/trellofewer/internal/trello"
)

// RegisterCardTools registers all single-card tools with the MCP server
func RegisterCardTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getCardTool := mcp.NewTool("trello_get_card",
		mcp.WithDescription("Get details of a specific card"),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("The ID of the card to retrieve"),
		),
	)

	s.AddTool(getCardTool, common.InstrumentedToolHandlerWithOperation("trello_get_card", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardID, err := common.RequireString(args, "cardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			card, err := client.GetCard(ctx, cardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get card: %v", err)), nil
			}

			result, _ := json.MarshalIndent(card, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getCardsTool := mcp.NewTool("trello_get_cards",
		mcp.WithDescription("Get details of several cards in one call"),
		mcp.WithString("cardIds",
			mcp.Required(),
			mcp.Description("Card ID (string) or array of card IDs to retrieve"),
		),
	)

	s.AddTool(getCardsTool, common.InstrumentedToolHandlerWithOperation("trello_get_cards", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardIDs, err := common.ParseStringOrArray(args["cardIds"], "cardIds")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			// One id failing to resolve must not hide the others.
			type fetchFailure struct {
				CardID string `json:"cardId"`
				Error  string `json:"error"`
			}
			cards := make([]trello.Card, 0, len(cardIDs))
			var failures []fetchFailure

			for _, id := range cardIDs {
				card, err := client.GetCard(ctx, id)
				if err != nil {
					failures = append(failures, fetchFailure{CardID: id, Error: err.Error()})
					continue
				}
				cards = append(cards, *card)
			}

			response := map[string]interface{}{"cards": cards}
			if len(failures) > 0 {
				response["failures"] = failures
			}

			result, _ := json.MarshalIndent(response, "", "  ")
			if len(cards) == 0 {
				return mcp.NewToolResultError(string(result)), nil
			}
			return mcp.NewToolResultText(string(result)), nil
		}))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createCardTool := mcp.NewTool("trello_create_card",
		mcp.WithDescription("Create a new card in a list"),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("The ID of the list to create the card in"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the new card"),
		),
		mcp.WithString("desc",
			mcp.Description("Description for the card"),
		),
		mcp.WithString("due",
			mcp.Description("Due date for the card (RFC3339 format)"),
		),
		mcp.WithString("labelIds",
			mcp.Description("Label ID (string) or array of label IDs to attach"),
		),
		mcp.WithString("memberIds",
			mcp.Description("Member ID (string) or array of member IDs to assign"),
		),
	)

	s.AddTool(createCardTool, common.InstrumentedToolHandlerWithOperation("trello_create_card", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			listID, err := common.RequireString(args, "listId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := common.RequireString(args, "name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			input := trello.CardInput{
				Name:   name,
				IDList: listID,
				Desc:   common.GetString(args, "desc"),
			}

			if dueStr := common.GetString(args, "due"); dueStr != "" {
				due, err := time.Parse(time.RFC3339, dueStr)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("due must be RFC3339: %v", err)), nil
				}
				input.Due = &due
			}

			if raw, ok := args["labelIds"]; ok && raw != nil {
				labels, err := common.ParseStringOrArray(raw, "labelIds")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				input.IDLabels = labels
			}

			if raw, ok := args["memberIds"]; ok && raw != nil {
				members, err := common.ParseStringOrArray(raw, "memberIds")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				input.IDMembers = members
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			card, err := client.CreateCard(ctx, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create card: %v", err)), nil
			}

			result, _ := json.MarshalIndent(card, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Card created successfully:\n%s", string(result))), nil
		}))

	updateCardTool := mcp.NewTool("trello_update_card",
		mcp.WithDescription("Update fields of an existing card. Only the provided fields are changed."),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("The ID of the card to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the card"),
		),
		mcp.WithString("desc",
			mcp.Description("New description for the card"),
		),
		mcp.WithString("due",
			mcp.Description("New due date (RFC3339 format)"),
		),
		mcp.WithString("listId",
			mcp.Description("Move the card to this list"),
		),
	)

	s.AddTool(updateCardTool, common.InstrumentedToolHandlerWithOperation("trello_update_card", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardID, err := common.RequireString(args, "cardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			update, err := cardUpdateFromArgs(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			card, err := client.UpdateCard(ctx, cardID, update)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update card: %v", err)), nil
			}

			result, _ := json.MarshalIndent(card, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Card updated successfully:\n%s", string(result))), nil
		}))

	moveCardTool := mcp.NewTool("trello_move_card",
		mcp.WithDescription("Move a card to a different list"),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("The ID of the card to move"),
		),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("The ID of the destination list"),
		),
	)

	s.AddTool(moveCardTool, common.InstrumentedToolHandlerWithOperation("trello_move_card", instrumentation.OperationMove, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardID, err := common.RequireString(args, "cardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			listID, err := common.RequireString(args, "listId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			card, err := client.MoveCard(ctx, cardID, listID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to move card: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Card %s moved to list %s", card.ID, listID)), nil
		}))

	archiveCardTool := mcp.NewTool("trello_archive_card",
		mcp.WithDescription("Archive a card"),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("The ID of the card to archive"),
		),
	)

	s.AddTool(archiveCardTool, common.InstrumentedToolHandlerWithOperation("trello_archive_card", instrumentation.OperationArchive, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardID, err := common.RequireString(args, "cardId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			card, err := client.ArchiveCard(ctx, cardID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to archive card: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Card %s archived successfully", card.ID)), nil
		}))

	deleteCardsTool := mcp.NewTool("trello_delete_cards",
		mcp.WithDescription("Permanently delete one or more cards. This cannot be undone; prefer trello_archive_card."),
		mcp.WithString("cardIds",
			mcp.Required(),
			mcp.Description("Card ID (string) or array of card IDs to delete"),
		),
	)

	s.AddTool(deleteCardsTool, common.InstrumentedToolHandlerWithOperation("trello_delete_cards", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			cardIDs, err := common.ParseStringOrArray(args["cardIds"], "cardIds")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			engine, err := sc.BulkEngine()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			report, err := engine.Run(ctx, "delete_cards", bulk.Selection{CardIDs: cardIDs}, func(ctx context.Context, c bulk.Candidate) (string, error) {
				if err := client.DeleteCard(ctx, c.Card.ID); err != nil {
					return "", err
				}
				return "deleted", nil
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to delete cards: %v", err)), nil
			}

			if ti := instrumentation.InvocationFromContext(ctx); ti != nil {
				ti.WithBulkCounts(report.Requested, report.Succeeded, report.Failed)
			}

			result, _ := json.MarshalIndent(report, "", "  ")
			text := fmt.Sprintf("%s\n%s", report.Summary(), string(result))
			if report.Succeeded == 0 {
				return mcp.NewToolResultError(text), nil
			}
			return mcp.NewToolResultText(text), nil
		}))
}

// cardUpdateFromArgs builds a partial update from the optional
// arguments. At least one field must be present.
func cardUpdateFromArgs(args map[string]interface{}) (trello.CardUpdate, error) {
	var update trello.CardUpdate

	if name, ok := args["name"].(string); ok && name != "" {
		update.Name = &name
	}
	if desc, ok := args["desc"].(string); ok {
		update.Desc = &desc
	}
	if listID, ok := args["listId"].(string); ok && listID != "" {
		update.IDList = &listID
	}
	if dueStr, ok := args["due"].(string); ok && dueStr != "" {
		due, err := time.Parse(time.RFC3339, dueStr)
		if err != nil {
			return trello.CardUpdate{}, fmt.Errorf("due must be RFC3339: %w", err)
		}
		update.Due = &due
	}

	if update == (trello.CardUpdate{}) {
		return trello.CardUpdate{}, fmt.Errorf("at least one of name, desc, due or listId is required")
	}
	return update, nil
}
