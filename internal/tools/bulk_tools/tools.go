package bulk_tools

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

// Selection filter options shared by the selection-based bulk tools.
func withSelectionArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	selection := []mcp.ToolOption{
		mcp.WithString("cardIds",
			mcp.Description("Card ID (string) or array of card IDs to target directly"),
		),
		mcp.WithString("listId",
			mcp.Description("Target all cards in this list (mutually exclusive with boardId)"),
		),
		mcp.WithString("boardId",
			mcp.Description("Target all cards on this board (mutually exclusive with listId)"),
		),
		mcp.WithString("nameContains",
			mcp.Description("Only cards whose name contains this text (case-insensitive)"),
		),
		mcp.WithString("labelId",
			mcp.Description("Only cards carrying this label"),
		),
		mcp.WithString("memberId",
			mcp.Description("Only cards assigned to this member"),
		),
		mcp.WithString("due",
			mcp.Description("Only cards in this due bucket: overdue, due-today, due-week or none"),
		),
		mcp.WithNumber("maxAgeDays",
			mcp.Description("Only cards untouched for at least this many days"),
		),
		mcp.WithBoolean("archived",
			mcp.Description("Match archived (true) or open (false) cards"),
		),
	}
	return append(opts, selection...)
}

// RegisterBulkTools registers the bulk card tools with the MCP server.
// All bulk tools are writes; nothing is registered in read-only mode.
func RegisterBulkTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	registerBulkCreate(s, sc)
	registerBulkMove(s, sc)
	registerBulkUpdate(s, sc)
	registerBulkArchive(s, sc)
	return nil
}

// reportResult renders a bulk report as a tool result and attaches its
// counts to the audit invocation carried by ctx. A run where every
// single item failed is surfaced as a tool error so agents notice;
// partial success is a normal result.
func reportResult(ctx context.Context, report *bulk.Report) *mcp.CallToolResult {
	if ti := instrumentation.InvocationFromContext(ctx); ti != nil {
		ti.WithBulkCounts(report.Requested, report.Succeeded, report.Failed)
	}

	result, _ := json.MarshalIndent(report, "", "  ")
	text := fmt.Sprintf("%s\n%s", report.Summary(), string(result))
	if report.Succeeded == 0 {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}

func registerBulkCreate(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("trello_bulk_create_cards",
		mcp.WithDescription("Create several cards in a list in one call"),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("The ID of the list to create the cards in"),
		),
		mcp.WithString("names",
			mcp.Required(),
			mcp.Description("Card name (string) or array of card names to create"),
		),
		mcp.WithString("desc",
			mcp.Description("Description applied to every created card"),
		),
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation("trello_bulk_create_cards", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			listID, err := common.RequireString(args, "listId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			names, err := common.ParseStringOrArray(args["names"], "names")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			desc := common.GetString(args, "desc")

			client, err := sc.TrelloClient()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			engine, err := sc.BulkEngine()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			candidates := make([]bulk.Candidate, len(names))
			for i, name := range names {
				candidates[i] = bulk.Candidate{Card: trello.Card{Name: name}, Index: i}
			}

			report, err := engine.RunItems(ctx, "bulk_create_cards", candidates, func(ctx context.Context, c bulk.Candidate) (string, error) {
				card, err := client.CreateCard(ctx, trello.CardInput{
					Name:   c.Card.Name,
					Desc:   desc,
					IDList: listID,
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("created card %s", card.ID), nil
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bulk create failed: %v", err)), nil
			}

			return reportResult(ctx, report), nil
		}))
}

func registerBulkMove(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("trello_bulk_move_cards",
		withSelectionArgs(
			mcp.WithDescription("Move a selection of cards to a different list"),
			mcp.WithString("targetListId",
				mcp.Required(),
				mcp.Description("The ID of the destination list"),
			),
		)...,
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation("trello_bulk_move_cards", instrumentation.OperationMove, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			targetListID, err := common.RequireString(args, "targetListId")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sel, err := common.ParseSelection(args)
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

			report, err := engine.Run(ctx, "bulk_move_cards", sel, func(ctx context.Context, c bulk.Candidate) (string, error) {
				if _, err := client.MoveCard(ctx, c.Card.ID, targetListID); err != nil {
					return "", err
				}
				return fmt.Sprintf("moved to list %s", targetListID), nil
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bulk move failed: %v", err)), nil
			}

			return reportResult(ctx, report), nil
		}))
}

func registerBulkUpdate(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("trello_bulk_update_cards",
		withSelectionArgs(
			mcp.WithDescription("Apply the same field changes to a selection of cards. Only the provided fields are changed."),
			mcp.WithString("setDesc",
				mcp.Description("New description for every selected card"),
			),
			mcp.WithString("setDue",
				mcp.Description("New due date for every selected card (RFC3339 format)"),
			),
			mcp.WithString("setListId",
				mcp.Description("Move every selected card to this list"),
			),
		)...,
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation("trello_bulk_update_cards", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			var update trello.CardUpdate
			if desc, ok := args["setDesc"].(string); ok {
				update.Desc = &desc
			}
			if listID, ok := args["setListId"].(string); ok && listID != "" {
				update.IDList = &listID
			}
			if dueStr, ok := args["setDue"].(string); ok && dueStr != "" {
				due, err := time.Parse(time.RFC3339, dueStr)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("setDue must be RFC3339: %v", err)), nil
				}
				update.Due = &due
			}
			if update == (trello.CardUpdate{}) {
				return mcp.NewToolResultError("at least one of setDesc, setDue or setListId is required"), nil
			}

			sel, err := common.ParseSelection(args)
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

			report, err := engine.Run(ctx, "bulk_update_cards", sel, func(ctx context.Context, c bulk.Candidate) (string, error) {
				if _, err := client.UpdateCard(ctx, c.Card.ID, update); err != nil {
					return "", err
				}
				return "updated", nil
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bulk update failed: %v", err)), nil
			}

			return reportResult(ctx, report), nil
		}))
}

func registerBulkArchive(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("trello_bulk_archive_cards",
		withSelectionArgs(
			mcp.WithDescription("Archive a selection of cards"),
		)...,
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation("trello_bulk_archive_cards", instrumentation.OperationArchive, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			sel, err := common.ParseSelection(args)
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

			report, err := engine.Run(ctx, "bulk_archive_cards", sel, func(ctx context.Context, c bulk.Candidate) (string, error) {
				if _, err := client.ArchiveCard(ctx, c.Card.ID); err != nil {
					return "", err
				}
				return "archived", nil
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bulk archive failed: %v", err)), nil
			}

			return reportResult(ctx, report), nil
		}))
}
