// Package board_tools provides MCP tools for browsing Trello boards.
//
// # Available Tools
//
//   - trello_list_boards: List all boards for the authenticated member
//   - trello_get_board: Get details of a specific board
//   - trello_get_board_lists: List the lists on a board
//   - trello_get_board_labels: List the labels defined on a board
//   - trello_get_board_members: List the members of a board
//
// All board tools are read-only and available regardless of the
// server's write gating.
package board_tools
