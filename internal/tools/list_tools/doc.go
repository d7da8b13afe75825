// Package list_tools provides MCP tools for working with Trello lists.
//
// # Available Tools
//
//   - trello_get_list: Get details of a specific list
//   - trello_get_list_cards: List the cards in a list
//   - trello_create_list: Create a new list on a board (write)
//
// Write tools are only registered when the server allows writes.
package list_tools
