package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSource_ReadTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "itt.csv"),
		[]byte("ParentKey;ItemCode;Quantity\nW-1;C-1;2\nW-1;C-2;\n"), 0o644))

	src, err := NewSource(dir, ';', zap.NewNop())
	require.NoError(t, err)
	defer src.Close()

	table, err := src.ReadTable(context.Background(), "itt.csv")
	require.NoError(t, err)
	assert.Equal(t, "itt.csv", table.Name)
	assert.Equal(t, []string{"ParentKey", "ItemCode", "Quantity"}, table.Header)
	assert.Equal(t, [][]string{{"W-1", "C-1", "2"}, {"W-1", "C-2", ""}}, table.Rows)
}

func TestSource_MissingTable(t *testing.T) {
	src, err := NewSource(t.TempDir(), ',', zap.NewNop())
	require.NoError(t, err)

	_, err = src.ReadTable(context.Background(), "items.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSource_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	_, err := NewSource(path, ',', zap.NewNop())
	assert.Error(t, err)

	_, err = NewSource(filepath.Join(t.TempDir(), "missing"), ',', zap.NewNop())
	assert.Error(t, err)
}
