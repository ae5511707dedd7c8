package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Key  string
	Desc bool
}

// OrderSchema lists sortable keys and the defaults applied when a request
// does not order explicitly.
type OrderSchema struct {
	Keys     []string
	Default  OrderTerm
	Tiebreak OrderTerm
	MaxTerms int
}

func (s OrderSchema) allows(key string) bool {
	for _, k := range s.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// ParseOrder parses "key [asc|desc], ..." into terms. The tiebreak key is
// appended unless already present so listings are stable.
func ParseOrder(raw string, schema OrderSchema) ([]OrderTerm, error) {
	if schema.Default.Key == "" || schema.Tiebreak.Key == "" {
		return nil, errors.New("order schema requires default and tiebreak keys")
	}
	maxTerms := schema.MaxTerms
	if maxTerms <= 0 {
		maxTerms = 2
	}

	var terms []OrderTerm
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}
		term := OrderTerm{Key: parts[0]}
		if !schema.allows(term.Key) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", term.Key)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				term.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], term.Key)
			}
		}
		if _, dup := seen[term.Key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", term.Key)
		}
		seen[term.Key] = struct{}{}
		terms = append(terms, term)
	}

	if len(terms) > maxTerms {
		return nil, fmt.Errorf("order_by supports at most %d keys", maxTerms)
	}
	if len(terms) == 0 {
		terms = append(terms, schema.Default)
		seen[schema.Default.Key] = struct{}{}
	}
	if _, ok := seen[schema.Tiebreak.Key]; !ok {
		terms = append(terms, schema.Tiebreak)
	}
	return terms, nil
}
