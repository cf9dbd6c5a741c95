package util

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	t.Run("wrapped sentinels are still matched", func(t *testing.T) {
		err := fmt.Errorf("resolving page 3: %w", ErrNoMemory)

		assert.ErrorIs(t, err, ErrNoMemory)
		assert.NotErrorIs(t, err, ErrAlreadyValid)
	})

	t.Run("swap errors unwrap to the io error", func(t *testing.T) {
		ioErr := errors.New("disk on fire")
		err := NewSwapError(7, ioErr)

		assert.ErrorIs(t, err, ioErr)
		assert.Equal(t, int64(7), err.PageId)
		assert.Equal(t, "swap failed: disk on fire", err.Error())

		var swapErr *SwapError
		assert.True(t, errors.As(fmt.Errorf("fault: %w", err), &swapErr))
	})
}

func TestConvert(t *testing.T) {
	type entry struct {
		Id    int
		Dirty bool
	}

	t.Run("encodes and decodes", func(t *testing.T) {
		data, err := ToBytes(entry{Id: 4, Dirty: true})
		require.NoError(t, err)

		res, err := ToStruct[entry](data)
		require.NoError(t, err)
		assert.Equal(t, entry{Id: 4, Dirty: true}, res)
	})

	t.Run("garbage does not decode", func(t *testing.T) {
		_, err := ToStruct[entry]([]byte{0xc1})
		assert.Error(t, err)
	})
}

func TestLogger(t *testing.T) {
	t.Run("parses known levels", func(t *testing.T) {
		lvl, err := ParseLevel("debug")
		assert.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, lvl)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger("LOUD", &buf)
		assert.Error(t, err)

		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("nil logger uses the default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), OrDefault(nil))
	})
}
