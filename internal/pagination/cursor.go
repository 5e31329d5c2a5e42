// Package pagination implements opaque keyset cursors for list endpoints.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor is a decoded pagination position: the last item seen and its sort
// timestamp.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult is one page of a cursor-paginated listing.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var ErrInvalidCursor = errors.New("invalid cursor format")

// EncodeCursor packs the last item's ID and timestamp into an opaque token.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token
// decodes to a nil cursor, meaning the first page.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: parts[0], Timestamp: timestamp}, nil
}
