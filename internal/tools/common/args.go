package common

import (
	"fmt"

	"github.com/trellofewer/trellofewer/internal/bulk"
)

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// GetString extracts an optional string argument.
func GetString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// RequireString extracts a required string argument.
func RequireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// ParseSelection extracts a bulk selection from tool arguments.
// Cards can be targeted directly via cardIds, or through a container
// (listId or boardId) narrowed by filter arguments.
func ParseSelection(args map[string]interface{}) (bulk.Selection, error) {
	sel := bulk.Selection{
		ListID:  GetString(args, "listId"),
		BoardID: GetString(args, "boardId"),
	}

	if raw, ok := args["cardIds"]; ok && raw != nil {
		ids, err := ParseStringOrArray(raw, "cardIds")
		if err != nil {
			return bulk.Selection{}, err
		}
		sel.CardIDs = ids
	}

	if sel.CardIDs == nil && sel.ListID == "" && sel.BoardID == "" {
		return bulk.Selection{}, fmt.Errorf("one of cardIds, listId or boardId is required")
	}
	if sel.ListID != "" && sel.BoardID != "" {
		return bulk.Selection{}, fmt.Errorf("listId and boardId are mutually exclusive")
	}

	predicates, err := parsePredicates(args)
	if err != nil {
		return bulk.Selection{}, err
	}
	if len(predicates) > 0 && sel.CardIDs != nil {
		return bulk.Selection{}, fmt.Errorf("filters cannot be combined with explicit cardIds")
	}
	sel.Predicates = predicates

	return sel, nil
}

// parsePredicates builds the AND-ed filter list from the optional
// filter arguments.
func parsePredicates(args map[string]interface{}) ([]bulk.Predicate, error) {
	var predicates []bulk.Predicate

	if text := GetString(args, "nameContains"); text != "" {
		predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateNameContains, Text: text})
	}
	if id := GetString(args, "labelId"); id != "" {
		predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateHasLabel, ID: id})
	}
	if id := GetString(args, "memberId"); id != "" {
		predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateHasMember, ID: id})
	}

	if due := GetString(args, "due"); due != "" {
		bucket := bulk.DueBucket(due)
		switch bucket {
		case bulk.DueOverdue, bulk.DueToday, bulk.DueWeek, bulk.DueNone:
			predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateDueBucket, Bucket: bucket})
		default:
			return nil, fmt.Errorf("due must be one of: overdue, due-today, due-week, none")
		}
	}

	if raw, ok := args["maxAgeDays"]; ok && raw != nil {
		days, ok := raw.(float64)
		if !ok || days < 0 || days != float64(int(days)) {
			return nil, fmt.Errorf("maxAgeDays must be a non-negative integer")
		}
		predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateMaxAgeDays, MaxAgeDays: int(days)})
	}

	if raw, ok := args["archived"]; ok && raw != nil {
		archived, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("archived must be a boolean")
		}
		predicates = append(predicates, bulk.Predicate{Kind: bulk.PredicateArchived, Archived: archived})
	}

	return predicates, nil
}
