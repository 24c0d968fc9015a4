package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultPageSize is the page size for list results. The tool catalog fits
// in one page today; the cursor machinery keeps the surface conformant for
// clients that page anyway.
const DefaultPageSize = 50

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// cursor is the decoded form. Offset indexes into the stable catalog order.
type cursor struct {
	Offset int `json:"offset"`
}

// EncodeCursor builds an opaque cursor for the given offset.
func EncodeCursor(offset int) string {
	data, _ := json.Marshal(cursor{Offset: offset})
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses an opaque cursor. An empty cursor means the start.
func DecodeCursor(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCursor, err)
	}

	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCursor, err)
	}
	if c.Offset < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrInvalidCursor)
	}
	return c.Offset, nil
}

// Page resolves one page of a collection with total items: the slice bounds
// for this page and the cursor for the next one, empty when this page is
// the last. A cursor pointing past the end yields an empty final page
// rather than an error, so a catalog that shrank between calls stays
// harmless.
func Page(rawCursor string, total, size int) (start, end int, next string, err error) {
	if size <= 0 {
		size = DefaultPageSize
	}

	start, err = DecodeCursor(rawCursor)
	if err != nil {
		return 0, 0, "", err
	}
	if start > total {
		start = total
	}

	end = start + size
	if end >= total {
		return start, total, "", nil
	}
	return start, end, EncodeCursor(end), nil
}
