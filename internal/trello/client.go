package trello

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Trello API endpoint.
const DefaultBaseURL = "https://api.trello.com"

// DefaultTimeout is the per-attempt deadline applied when none is
// configured.
const DefaultTimeout = 10 * time.Second

// Config holds the client configuration.
type Config struct {
	// APIKey and Token authenticate every request. Both are
	// appended as query parameters, which is how the Trello API
	// expects them.
	APIKey string
	Token  string

	// BaseURL overrides the API endpoint (for testing).
	BaseURL string

	// Timeout is the hard deadline applied to each attempt.
	Timeout time.Duration

	// Retry configures the retry policy for retryable failures.
	Retry RetryConfig

	// Logger receives structured request events. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Recorder receives executor events for metrics. Optional.
	Recorder Recorder
}

// Client is the Trello API client. All methods funnel through the
// request executor in request.go.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	timeout    time.Duration
	retry      RetryConfig
	logger     *slog.Logger
	recorder   Recorder

	// sleep is replaced in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a new Trello client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		retry:      cfg.Retry,
		logger:     cfg.Logger.With(slog.String("component", "trello-client")),
		recorder:   cfg.Recorder,
		sleep:      sleepWithContext,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// ListBoards lists the boards of the authenticated member.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var boards []Board
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/members/me/boards",
		Idempotent: true,
	}, &boards)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// GetBoard retrieves a board by ID.
func (c *Client) GetBoard(ctx context.Context, boardID string) (*Board, error) {
	var board Board
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/boards/" + boardID,
		Idempotent: true,
	}, &board)
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return &board, nil
}

// GetBoardLists retrieves the open lists of a board.
func (c *Client) GetBoardLists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/boards/" + boardID + "/lists",
		Idempotent: true,
	}, &lists)
	if err != nil {
		return nil, fmt.Errorf("failed to get board lists: %w", err)
	}
	return lists, nil
}

// GetBoardCards retrieves all open cards of a board.
func (c *Client) GetBoardCards(ctx context.Context, boardID string) ([]Card, error) {
	var cards []Card
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/boards/" + boardID + "/cards",
		Idempotent: true,
	}, &cards)
	if err != nil {
		return nil, fmt.Errorf("failed to get board cards: %w", err)
	}
	return cards, nil
}

// GetBoardLabels retrieves the labels defined on a board.
func (c *Client) GetBoardLabels(ctx context.Context, boardID string) ([]Label, error) {
	var labels []Label
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/boards/" + boardID + "/labels",
		Idempotent: true,
	}, &labels)
	if err != nil {
		return nil, fmt.Errorf("failed to get board labels: %w", err)
	}
	return labels, nil
}

// GetBoardMembers retrieves the members of a board.
func (c *Client) GetBoardMembers(ctx context.Context, boardID string) ([]Member, error) {
	var members []Member
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/boards/" + boardID + "/members",
		Idempotent: true,
	}, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to get board members: %w", err)
	}
	return members, nil
}

// GetList retrieves a list by ID.
func (c *Client) GetList(ctx context.Context, listID string) (*List, error) {
	var list List
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/lists/" + listID,
		Idempotent: true,
	}, &list)
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return &list, nil
}

// CreateList creates a new list on a board.
func (c *Client) CreateList(ctx context.Context, boardID, name string) (*List, error) {
	q := url.Values{}
	q.Set("idBoard", boardID)
	q.Set("name", name)

	var list List
	err := c.do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/1/lists",
		Query:  q,
	}, &list)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return &list, nil
}

// GetListCards retrieves the open cards of a list.
func (c *Client) GetListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/lists/" + listID + "/cards",
		Idempotent: true,
	}, &cards)
	if err != nil {
		return nil, fmt.Errorf("failed to get list cards: %w", err)
	}
	return cards, nil
}

// GetCard retrieves a card by ID.
func (c *Client) GetCard(ctx context.Context, cardID string) (*Card, error) {
	var card Card
	err := c.do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/1/cards/" + cardID,
		Idempotent: true,
	}, &card)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// CreateCard creates a new card.
func (c *Client) CreateCard(ctx context.Context, input CardInput) (*Card, error) {
	if input.IDList == "" {
		return nil, fmt.Errorf("idList is required")
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	q := url.Values{}
	q.Set("idList", input.IDList)
	q.Set("name", input.Name)
	if input.Desc != "" {
		q.Set("desc", input.Desc)
	}
	if input.Due != nil {
		q.Set("due", input.Due.Format(time.RFC3339))
	}
	if len(input.IDLabels) > 0 {
		q.Set("idLabels", strings.Join(input.IDLabels, ","))
	}
	if len(input.IDMembers) > 0 {
		q.Set("idMembers", strings.Join(input.IDMembers, ","))
	}
	if input.Pos != "" {
		q.Set("pos", input.Pos)
	}

	var card Card
	err := c.do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/1/cards",
		Query:  q,
	}, &card)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return &card, nil
}

// UpdateCard updates the non-nil fields of a card.
func (c *Client) UpdateCard(ctx context.Context, cardID string, update CardUpdate) (*Card, error) {
	q := url.Values{}
	if update.Name != nil {
		q.Set("name", *update.Name)
	}
	if update.Desc != nil {
		q.Set("desc", *update.Desc)
	}
	if update.Due != nil {
		q.Set("due", update.Due.Format(time.RFC3339))
	}
	if update.Closed != nil {
		q.Set("closed", fmt.Sprintf("%t", *update.Closed))
	}
	if update.IDList != nil {
		q.Set("idList", *update.IDList)
	}
	if len(q) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	var card Card
	err := c.do(ctx, Request{
		Method:     http.MethodPut,
		Path:       "/1/cards/" + cardID,
		Query:      q,
		Idempotent: true,
	}, &card)
	if err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return &card, nil
}

// MoveCard moves a card to another list.
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) (*Card, error) {
	return c.UpdateCard(ctx, cardID, CardUpdate{IDList: &listID})
}

// ArchiveCard archives (closes) a card.
func (c *Client) ArchiveCard(ctx context.Context, cardID string) (*Card, error) {
	closed := true
	return c.UpdateCard(ctx, cardID, CardUpdate{Closed: &closed})
}

// DeleteCard permanently deletes a card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	err := c.do(ctx, Request{
		Method:     http.MethodDelete,
		Path:       "/1/cards/" + cardID,
		Idempotent: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
