// Package search indexes message bodies and answers /find queries from
// the presentation layer.
package search

import (
	"strconv"
	"strings"
)

// Query decouples the raw chat input from the index engine requirements.
type Query struct {
	RawInput string // the original input from the user
	Terms    string // the text to match against message bodies
	RoomID   string // optional room filter
	Limit    int    // number of results
}

const defaultLimit = 10

// ParseQuery extracts command-line style arguments from a raw input.
// Example: /find invoice --room 7f1a... --limit 5
func ParseQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    defaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "room":
				query.RoomID = val
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++
			continue
		}

		// Anything that is not a flag or the command itself is a term.
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
