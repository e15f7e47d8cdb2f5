package vote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToggle(t *testing.T) {
	t.Run("Vote up from no vote", func(t *testing.T) {
		tally := Tally{}
		require.NoError(t, Toggle(&tally, Up))
		assert.Equal(t, Tally{Upvotes: 1, UserVote: Up}, tally)
		assert.Equal(t, 1, tally.Score())
	})

	t.Run("Same direction twice cancels the vote", func(t *testing.T) {
		tally := Tally{Upvotes: 7, Downvotes: 2}
		require.NoError(t, Toggle(&tally, Up))
		require.NoError(t, Toggle(&tally, Up))
		assert.Equal(t, None, tally.UserVote)
		assert.Equal(t, 7, tally.Upvotes)
		assert.Equal(t, 2, tally.Downvotes)
	})

	t.Run("Opposite direction flips in one step", func(t *testing.T) {
		tally := Tally{Upvotes: 1, UserVote: Up}
		require.NoError(t, Toggle(&tally, Down))
		assert.Equal(t, Tally{Upvotes: 0, Downvotes: 1, UserVote: Down}, tally)
	})

	t.Run("Up, then up, then down", func(t *testing.T) {
		tally := Tally{Upvotes: 2, UserVote: Up}
		require.NoError(t, Toggle(&tally, Up))
		assert.Equal(t, 1, tally.Upvotes)
		assert.Equal(t, None, tally.UserVote)

		require.NoError(t, Toggle(&tally, Down))
		assert.Equal(t, 1, tally.Upvotes)
		assert.Equal(t, 1, tally.Downvotes)
		assert.Equal(t, Down, tally.UserVote)
	})

	t.Run("Counters never go negative", func(t *testing.T) {
		tally := Tally{UserVote: Down}
		require.NoError(t, Toggle(&tally, Down))
		assert.Equal(t, 0, tally.Downvotes)
		assert.Equal(t, None, tally.UserVote)
	})

	t.Run("Invalid direction leaves the tally unchanged", func(t *testing.T) {
		tally := Tally{Upvotes: 3, UserVote: Up}
		err := Toggle(&tally, Direction("sideways"))
		assert.ErrorIs(t, err, ErrInvalidDirection)
		assert.Equal(t, Tally{Upvotes: 3, UserVote: Up}, tally)

		err = Toggle(&tally, None)
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("UP")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestTallyJSON(t *testing.T) {
	t.Run("No vote is encoded as null", func(t *testing.T) {
		data, err := json.Marshal(Tally{Upvotes: 1})
		require.NoError(t, err)
		assert.JSONEq(t, `{"upvotes":1,"downvotes":0,"userVote":null}`, string(data))
	})

	t.Run("Decoding stored documents", func(t *testing.T) {
		var tally Tally
		require.NoError(t, json.Unmarshal([]byte(`{"upvotes":2,"downvotes":1,"userVote":"down"}`), &tally))
		assert.Equal(t, Tally{Upvotes: 2, Downvotes: 1, UserVote: Down}, tally)

		require.NoError(t, json.Unmarshal([]byte(`{"upvotes":2,"userVote":null}`), &tally))
		assert.Equal(t, None, tally.UserVote)
	})

	t.Run("Unknown direction reads as no vote", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		restore := zap.ReplaceGlobals(zap.New(core))
		defer restore()

		var tally Tally
		require.NoError(t, json.Unmarshal([]byte(`{"upvotes":3,"userVote":"left"}`), &tally))
		assert.Equal(t, Tally{Upvotes: 3, UserVote: None}, tally)

		tally = Tally{UserVote: Up}
		require.NoError(t, json.Unmarshal([]byte(`{"userVote":7}`), &tally))
		assert.Equal(t, None, tally.UserVote)

		assert.Equal(t, 1, logs.FilterMessage("ignoring unknown vote direction").Len())
		assert.Equal(t, 1, logs.FilterMessage("ignoring malformed vote direction").Len())
	})
}
