package trello

import "time"

// Board represents a Trello board
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc,omitempty"`
	Closed bool   `json:"closed"`
	URL    string `json:"url,omitempty"`
}

// List represents a list on a board
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	IDBoard string  `json:"idBoard"`
	Closed  bool    `json:"closed"`
	Pos     float64 `json:"pos,omitempty"`
}

// Card represents a Trello card
type Card struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Desc             string     `json:"desc,omitempty"`
	IDList           string     `json:"idList"`
	IDBoard          string     `json:"idBoard"`
	IDLabels         []string   `json:"idLabels,omitempty"`
	IDMembers        []string   `json:"idMembers,omitempty"`
	Due              *time.Time `json:"due,omitempty"`
	DueComplete      bool       `json:"dueComplete"`
	Closed           bool       `json:"closed"`
	DateLastActivity *time.Time `json:"dateLastActivity,omitempty"`
	Pos              float64    `json:"pos,omitempty"`
	URL              string     `json:"url,omitempty"`
}

// Label represents a board label
type Label struct {
	ID      string `json:"id"`
	IDBoard string `json:"idBoard"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

// Member represents a Trello member
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

// CardInput holds the fields for creating a card
type CardInput struct {
	Name      string
	Desc      string
	IDList    string
	Due       *time.Time
	IDLabels  []string
	IDMembers []string
	Pos       string // "top", "bottom" or a positive number
}

// CardUpdate holds the fields for updating a card.
// Nil fields are left unchanged.
type CardUpdate struct {
	Name   *string
	Desc   *string
	Due    *time.Time
	Closed *bool
	IDList *string
}
