// Package bulk_tools provides MCP tools that operate on many cards in
// one call.
//
// # Available Tools
//
//   - trello_bulk_create_cards: Create several cards in a list
//   - trello_bulk_move_cards: Move a selection of cards to a list
//   - trello_bulk_update_cards: Apply the same field changes to a selection
//   - trello_bulk_archive_cards: Archive a selection of cards
//
// # Selections
//
// Cards are selected either by explicit cardIds or by a container
// (listId or boardId) narrowed with filter arguments: nameContains,
// labelId, memberId, due (overdue, due-today, due-week, none),
// maxAgeDays and archived. Filters combine with AND semantics.
//
// Every bulk tool returns a report with per-card successes and
// failures; one card failing never aborts the rest. Selections larger
// than the safety limit are truncated and the report says so.
//
// All bulk tools mutate cards and are only registered when the server
// allows writes.
package bulk_tools
