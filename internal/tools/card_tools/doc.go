// Package card_tools provides MCP tools for single-card operations.
//
// # Available Tools
//
//   - trello_get_card: Get details of a specific card
//   - trello_get_cards: Get details of several cards in one call
//   - trello_create_card: Create a card in a list (write)
//   - trello_update_card: Update a card's fields (write)
//   - trello_move_card: Move a card to a different list (write)
//   - trello_archive_card: Archive a card (write)
//   - trello_delete_cards: Permanently delete one or more cards (write)
//
// Write tools are only registered when the server allows writes. Bulk
// variants of these operations live in the bulk_tools package.
package card_tools
