package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Debodeep94/SLOG-Eval/types"
)

func TestStatic_LoadItems(t *testing.T) {
	t.Run("returns all items", func(t *testing.T) {
		items := []types.Item{
			{ID: "1", Text: "report one", Provenance: types.ProvenanceSourceA},
			{ID: "1", Text: "report one, other source", Provenance: types.ProvenanceSourceB},
			{ID: "2", Text: "report two", ImageRef: "img/2.png", Provenance: types.ProvenanceSourceA},
		}
		src := NewStatic(items)

		result, err := src.LoadItems(context.Background())

		require.NoError(t, err)
		require.Equal(t, items, result)
	})

	t.Run("returns a copy", func(t *testing.T) {
		items := []types.Item{{ID: "1", Text: "r", Provenance: types.ProvenanceSourceA}}
		src := NewStatic(items)

		result, err := src.LoadItems(context.Background())
		require.NoError(t, err)
		result[0].ID = "modified"

		again, err := src.LoadItems(context.Background())
		require.NoError(t, err)
		require.Equal(t, "1", again[0].ID)
	})

	t.Run("rejects items missing required fields", func(t *testing.T) {
		src := NewStatic([]types.Item{
			{ID: "1", Text: "ok", Provenance: types.ProvenanceSourceA},
			{ID: "2", Text: "", Provenance: types.ProvenanceSourceA},
		})

		_, err := src.LoadItems(context.Background())
		require.ErrorIs(t, err, types.ErrDataError)

		var dataErr *types.DataError
		require.True(t, errors.As(err, &dataErr))
		require.Equal(t, 2, dataErr.Row)
		require.Equal(t, "text", dataErr.Field)
	})

	t.Run("rejects untagged items", func(t *testing.T) {
		src := NewStatic([]types.Item{{ID: "1", Text: "r"}})
		_, err := src.LoadItems(context.Background())
		require.ErrorIs(t, err, types.ErrDataError)
	})

	t.Run("update replaces items", func(t *testing.T) {
		src := NewStatic(nil)
		src.Update([]types.Item{{ID: "9", Text: "r", Provenance: types.ProvenanceSourceB}})

		result, err := src.LoadItems(context.Background())
		require.NoError(t, err)
		require.Len(t, result, 1)
	})
}

func TestValidate_Duplicates(t *testing.T) {
	err := Validate("test", []types.Item{
		{ID: "1", Text: "a", Provenance: types.ProvenanceSourceA},
		{ID: "1", Text: "b", Provenance: types.ProvenanceSourceA},
	})

	var dataErr *types.DataError
	require.True(t, errors.As(err, &dataErr))
	require.Equal(t, 2, dataErr.Row)
	require.Contains(t, dataErr.Error(), "duplicate of row 1")
}
