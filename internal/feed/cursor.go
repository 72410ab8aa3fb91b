// Package feed implements the opaque pagination cursor used by the feed
// endpoint. A cursor encodes the (created_at, id) sort key of the last post
// in a returned page; it is a pure boundary, not a reference to a row, so it
// keeps working even if the post it was minted from is deleted.
package feed

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for tokens that cannot be decoded. Callers
// must restart pagination from the top rather than retry the same token.
var ErrInvalidCursor = errors.New("invalid feed cursor")

// Cursor is the decoded sort-key boundary of a feed page.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// Encode serializes the cursor into an opaque URL-safe token.
// The timestamp is truncated to microseconds, matching Postgres timestamp
// precision, so a round-tripped cursor compares equal to the stored value.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token minted by Encode. Any malformed input yields
// ErrInvalidCursor; the error never reveals the token's internal layout.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return Cursor{}, ErrInvalidCursor
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || id == 0 {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{
		CreatedAt: time.UnixMicro(micros).UTC(),
		ID:        uint(id),
	}, nil
}
