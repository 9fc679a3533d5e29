package csvlog

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	l, err := New(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.Append(ctx, audit.Entry{ID: "S1", Name: "Ada", Year: "2", Department: "CS"}))
	require.NoError(t, l.Append(ctx, audit.Entry{ID: "S2", Name: "Lovelace, A.", Year: "3", Department: "Math"}))

	rows := readAll(t, path)
	assert.Equal(t, [][]string{
		audit.Header,
		{"S1", "Ada", "2", "CS"},
		{"S2", "Lovelace, A.", "3", "Math"},
	}, rows)
}

func TestAppend_ExistingFileGetsNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte("Student ID,Name,Year,Department\nS0,Old,1,Art\n"), 0o644))

	l, err := New(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(context.Background(), audit.Entry{ID: "S1", Name: "Ada", Year: "2", Department: "CS"}))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"S1", "Ada", "2", "CS"}, rows[2])
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestAppend_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	l, err := New(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Append(ctx, audit.Entry{ID: "S1"}), context.Canceled)
	assert.NoFileExists(t, path)
}
