package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Debodeep94/SLOG-Eval/store/storetest"
	slogtest "github.com/Debodeep94/SLOG-Eval/testing"
	"github.com/Debodeep94/SLOG-Eval/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_Contract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) types.ProgressStore {
		s, err := New(t.TempDir())
		require.NoError(t, err)

		return s
	})
}

func TestStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	rec := storetest.Record("dr.who", types.PhaseQual, types.ProvenanceSourceB, "12/a", 0)
	require.NoError(t, s.Append(context.Background(), rec))

	path := filepath.Join(dir, "dr=2Ewho", "qual_source_b_12=2Fa.json")
	require.FileExists(t, path)

	entries, err := os.ReadDir(filepath.Join(dir, "dr=2Ewho"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not remain")
}

func TestStore_IdenticalAppendOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	rec := storetest.Record("u", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)
	require.NoError(t, s.Append(ctx, rec))
	require.NoError(t, s.Append(ctx, rec))

	got, err := s.ListCompleted(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestStore_SkipsBadDocuments(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, WithLogger(slogtest.NewTestLogger(t)))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, storetest.Record("u", types.PhaseQuant, types.ProvenanceSourceA, "1", 0)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u", "quant_source_a_2.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u", "quant_source_a_3.json"), []byte(`{"phase":"quant"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u", "notes.txt"), []byte("ignored"), 0o600))

	got, err := s.ListCompleted(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ItemID)
}

func TestStore_ToleratesOlderLayouts(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "u"), 0o750))
	legacy := `{"user_id":"u","phase":"quant","item_id":"5","provenance":"A","Edema":"2"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u", "legacy.json"), []byte(legacy), 0o600))

	got, err := s.ListCompleted(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, types.ProvenanceSourceA, got[0].Provenance)
	require.True(t, got[0].RecordedAt.IsZero())
	require.Equal(t, "2", got[0].Payload["Edema"])
}
