package trade

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"ledger/internal/model"
	"ledger/pkg/exception"
)

// Cursor is a position in the (ExecutedAt, ID) order of trades. The zero cursor means "from the edge".
type Cursor struct {
	ExecutedAt time.Time
	ID         uuid.UUID
}

// CursorOf returns the cursor positioned at t.
func CursorOf(t model.Trade) Cursor {
	return Cursor{ExecutedAt: t.ExecutedAt, ID: t.ID}
}

// IsZero reports whether c is the zero cursor.
func (c Cursor) IsZero() bool {
	return c.ExecutedAt.IsZero() && c.ID == uuid.Nil
}

// String encodes the cursor as <unix nanos>:<trade id>.
func (c Cursor) String() string {
	if c.IsZero() {
		return ""
	}
	return strconv.FormatInt(c.ExecutedAt.UnixNano(), 10) + ":" + c.ID.String()
}

// ParseCursor decodes a cursor produced by Cursor.String. An empty string is the zero cursor.
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	nanos, id, ok := strings.Cut(s, ":")
	if !ok {
		return Cursor{}, errors.Wrapf(exception.ErrInvalidCursor, "cursor: %q", s)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return Cursor{}, errors.Wrapf(exception.ErrInvalidCursor, "cursor time: %q", nanos)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return Cursor{}, errors.Wrapf(exception.ErrInvalidCursor, "cursor id: %q", id)
	}
	return Cursor{ExecutedAt: time.Unix(0, n).UTC(), ID: u}, nil
}
