package vote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrInvalidDirection = errors.New("invalid vote direction")

// Direction is the vote held by the local identity on an entity.
// The zero value means no vote and is encoded as JSON null.
type Direction string

const (
	None Direction = ""
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if d == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON reads an unknown or malformed stored vote as no vote, so one
// bad field does not discard the whole document it belongs to.
func (d *Direction) UnmarshalJSON(data []byte) error {
	*d = None
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		zap.L().Warn("ignoring malformed vote direction", zap.ByteString("value", data), zap.Error(err))
		return nil
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		zap.L().Warn("ignoring unknown vote direction", zap.String("value", s))
		return nil
	}
	*d = parsed
	return nil
}

// Tally holds the vote counters shared by posts and comments.
type Tally struct {
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	UserVote  Direction `json:"userVote"`
}

// Score is the displayed value of an entity.
func (t Tally) Score() int {
	return t.Upvotes - t.Downvotes
}

// Toggle applies a vote in the given direction. Voting the same direction
// twice cancels the vote, voting the opposite direction flips it.
func Toggle(t *Tally, d Direction) error {
	if d != Up && d != Down {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, string(d))
	}

	current := t.UserVote
	if c := t.counter(current); c != nil && *c > 0 {
		*c--
	}

	if current == d {
		t.UserVote = None
		return nil
	}

	t.UserVote = d
	*t.counter(d)++
	return nil
}

func (t *Tally) counter(d Direction) *int {
	switch d {
	case Up:
		return &t.Upvotes
	case Down:
		return &t.Downvotes
	}
	return nil
}
