package main

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/jobala/vmsim/config"
	"github.com/jobala/vmsim/memory"
	"github.com/jobala/vmsim/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("writes a dump of the frame table", testRunDump)
	t.Run("one dispatch per reference", testRunDispatch)
}

func testRunDispatch(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Frames = 2
	cfg.PageSize = 64
	cfg.Tasks = 3
	cfg.PagesPerTask = 5
	cfg.References = 30
	cfg.SwapfilePath = path.Join(dir, "vm.swap")
	cfg.DumpPath = ""

	var out bytes.Buffer
	logger, err := util.NewLogger("DEBUG", &out)
	require.NoError(t, err)

	require.NoError(t, run(cfg, logger))
	assert.Contains(t, out.String(), "page fault")

	// a faulting reference must not be followed by a second dispatch
	dispatches := strings.Count(out.String(), "thread dispatched")
	assert.LessOrEqual(t, dispatches, cfg.References+1)
}

func testRunDump(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Frames = 3
	cfg.PageSize = 64
	cfg.PagesPerTask = 5
	cfg.References = 40
	cfg.SwapfilePath = path.Join(dir, "vm.swap")
	cfg.DumpPath = path.Join(dir, "frames.dmp")

	var out bytes.Buffer
	logger, err := util.NewLogger("INFO", &out)
	require.NoError(t, err)

	require.NoError(t, run(cfg, logger))
	assert.Contains(t, out.String(), "simulation done")

	data, err := os.ReadFile(cfg.DumpPath)
	require.NoError(t, err)
	states, err := memory.LoadDump(data)
	require.NoError(t, err)
	assert.Len(t, states, 3)
	for _, s := range states {
		assert.Zero(t, s.ReservedBy)
	}
}
