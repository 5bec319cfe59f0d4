package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/state"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backup.json")

	s := state.New("master", 4)
	s.Iteration = 3
	s.RequestHall(2, false)
	s.SetLocalElevatorState("A", domain.NewElevatorState(4))

	require.NoError(t, Save(path, s))

	loaded := Load(path, "master", 4)
	assert.Equal(t, s.Iteration, loaded.Iteration)
	assert.True(t, loaded.HallRequests[2].Down.Requested)
}

func TestLoad_MissingFileYieldsFreshState(t *testing.T) {
	t.Parallel()

	loaded := Load(filepath.Join(t.TempDir(), "does-not-exist.json"), "master", 4)
	assert.Equal(t, int64(0), loaded.Iteration)
	assert.Empty(t, loaded.Elevators)
}

func TestLoad_CorruptFileYieldsFreshState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	loaded := Load(path, "master", 4)
	assert.Equal(t, int64(0), loaded.Iteration)
}
