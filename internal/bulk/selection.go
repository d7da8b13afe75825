package bulk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/trellofewer/trellofewer/internal/trello"
)

// Selection errors.
var (
	// ErrInvalidSelection is returned when neither explicit card ids
	// nor a container id is supplied.
	ErrInvalidSelection = errors.New("selection requires card ids or a list/board id")

	// ErrEmptySelection is returned when a selection resolves to zero
	// candidates.
	ErrEmptySelection = errors.New("selection matched no cards")
)

// CardSource provides the card lookups the resolver needs. It is
// implemented by trello.Client.
type CardSource interface {
	GetCard(ctx context.Context, cardID string) (*trello.Card, error)
	GetListCards(ctx context.Context, listID string) ([]trello.Card, error)
	GetBoardCards(ctx context.Context, boardID string) ([]trello.Card, error)
}

// PredicateKind identifies one of the closed set of filter variants.
type PredicateKind string

const (
	PredicateNameContains PredicateKind = "name_contains"
	PredicateHasLabel     PredicateKind = "has_label"
	PredicateHasMember    PredicateKind = "has_member"
	PredicateDueBucket    PredicateKind = "due"
	PredicateMaxAgeDays   PredicateKind = "max_age_days"
	PredicateArchived     PredicateKind = "archived"
)

// DueBucket is the day-granularity due-date bucket a card can fall into.
type DueBucket string

const (
	DueOverdue DueBucket = "overdue"
	DueToday   DueBucket = "due-today"
	DueWeek    DueBucket = "due-week"
	DueNone    DueBucket = "none"
)

// Predicate is one tagged filter variant. Only the field matching
// Kind is meaningful. Predicates are combined with AND semantics.
type Predicate struct {
	Kind PredicateKind

	Text       string    // PredicateNameContains
	ID         string    // PredicateHasLabel, PredicateHasMember
	Bucket     DueBucket // PredicateDueBucket
	MaxAgeDays int       // PredicateMaxAgeDays
	Archived   bool      // PredicateArchived
}

// matches evaluates the predicate against a card snapshot. now is
// passed explicitly so date bucketing is testable.
func (p Predicate) matches(card trello.Card, now time.Time) bool {
	switch p.Kind {
	case PredicateNameContains:
		return strings.Contains(strings.ToLower(card.Name), strings.ToLower(p.Text))
	case PredicateHasLabel:
		return slices.Contains(card.IDLabels, p.ID)
	case PredicateHasMember:
		return slices.Contains(card.IDMembers, p.ID)
	case PredicateDueBucket:
		return matchesDueBucket(card.Due, p.Bucket, now)
	case PredicateMaxAgeDays:
		if card.DateLastActivity == nil {
			return false
		}
		return now.Sub(*card.DateLastActivity) >= time.Duration(p.MaxAgeDays)*24*time.Hour
	case PredicateArchived:
		return card.Closed == p.Archived
	default:
		return false
	}
}

// matchesDueBucket compares a due date against now at day granularity.
func matchesDueBucket(due *time.Time, bucket DueBucket, now time.Time) bool {
	if bucket == DueNone {
		return due == nil
	}
	if due == nil {
		return false
	}

	today := startOfDay(now)
	dueDay := startOfDay(due.In(now.Location()))

	switch bucket {
	case DueOverdue:
		return dueDay.Before(today)
	case DueToday:
		return dueDay.Equal(today)
	case DueWeek:
		return !dueDay.Before(today) && dueDay.Before(today.AddDate(0, 0, 7))
	default:
		return false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Selection specifies the targets of a bulk operation: either
// explicit card ids, or a container (list or board) whose cards are
// filtered by predicates.
type Selection struct {
	CardIDs    []string
	ListID     string
	BoardID    string
	Predicates []Predicate
}

// Candidate is a resolved card tagged with its original index in the
// resolution order. Concurrent execution does not preserve completion
// order, so the index is the only reliable association between an
// outcome and its origin.
//
// For explicit-id selections a card that could not be fetched is
// still a candidate: Err carries the resolution failure and the
// executor reports it without invoking the operation.
type Candidate struct {
	Card  trello.Card
	Index int
	Err   error
}

// Resolver turns a Selection into an ordered candidate list.
type Resolver struct {
	source CardSource

	// now is replaced in tests for deterministic date bucketing.
	now func() time.Time
}

// NewResolver creates a resolver backed by the given card source.
func NewResolver(source CardSource) *Resolver {
	return &Resolver{source: source, now: time.Now}
}

// Resolve produces the ordered candidate list for a selection. It
// never mutates anything remote. A selection that yields zero
// resolvable candidates fails with ErrEmptySelection.
func (r *Resolver) Resolve(ctx context.Context, sel Selection) ([]Candidate, error) {
	switch {
	case len(sel.CardIDs) > 0:
		return r.resolveExplicit(ctx, sel.CardIDs)
	case sel.ListID != "" || sel.BoardID != "":
		return r.resolveFiltered(ctx, sel)
	default:
		return nil, ErrInvalidSelection
	}
}

// resolveExplicit fetches each id in the given order. A missing id
// becomes a failed candidate rather than failing the whole call.
func (r *Resolver) resolveExplicit(ctx context.Context, ids []string) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(ids))
	resolved := 0
	for i, id := range ids {
		card, err := r.source.GetCard(ctx, id)
		if err != nil {
			candidates = append(candidates, Candidate{
				Card:  trello.Card{ID: id},
				Index: i,
				Err:   fmt.Errorf("resolve card %s: %w", id, err),
			})
			continue
		}
		candidates = append(candidates, Candidate{Card: *card, Index: i})
		resolved++
	}
	if resolved == 0 {
		return nil, fmt.Errorf("%w: none of %d card ids could be resolved", ErrEmptySelection, len(ids))
	}
	return candidates, nil
}

// resolveFiltered loads the container's cards and keeps those
// matching every predicate.
func (r *Resolver) resolveFiltered(ctx context.Context, sel Selection) ([]Candidate, error) {
	var cards []trello.Card
	var err error
	if sel.ListID != "" {
		cards, err = r.source.GetListCards(ctx, sel.ListID)
	} else {
		cards, err = r.source.GetBoardCards(ctx, sel.BoardID)
	}
	if err != nil {
		return nil, fmt.Errorf("load selection container: %w", err)
	}

	now := r.now()
	candidates := make([]Candidate, 0, len(cards))
	for _, card := range cards {
		if matchesAll(card, sel.Predicates, now) {
			candidates = append(candidates, Candidate{Card: card, Index: len(candidates)})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrEmptySelection
	}
	return candidates, nil
}

// matchesAll applies AND semantics over all predicates.
func matchesAll(card trello.Card, predicates []Predicate, now time.Time) bool {
	for _, p := range predicates {
		if !p.matches(card, now) {
			return false
		}
	}
	return true
}
