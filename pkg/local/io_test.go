package local

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

func TestFindFiles_BasicAndIgnoreDirs(t *testing.T) {
	tmpDir := t.TempDir()

	f1 := filepath.Join(tmpDir, "a.txt")
	f2 := filepath.Join(tmpDir, "sub", "b.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(f2), 0o755))
	require.NoError(t, os.WriteFile(f1, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(f2, []byte("2"), 0o644))

	matches, err := FindFiles(filepath.Join(tmpDir, "**", "*.txt"))
	require.NoError(t, err)
	require.Contains(t, matches, f1)
	require.Contains(t, matches, f2)

	allMatches, err := FindFiles(filepath.Join(tmpDir, "**"))
	require.NoError(t, err)
	for _, m := range allMatches {
		info, err := os.Lstat(m)
		require.NoError(t, err)
		require.True(t, info.Mode().IsRegular())
	}
}

func TestReadLines_Basic(t *testing.T) {
	tmpDir := t.TempDir()
	fpath := filepath.Join(tmpDir, "test.txt")
	content := strings.Join([]string{"first line", "second line", "third line"}, "\n") + "\n"
	require.NoError(t, os.WriteFile(fpath, []byte(content), 0o644))

	lines, err := ReadLines(fpath)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	for i, expected := range []string{"first line", "second line", "third line"} {
		ln := lines[i]
		require.Equal(t, fpath, ln.Filename)
		require.Equal(t, i+1, ln.Number)
		require.Equal(t, expected, ln.Text)
	}
}

func TestReadLines_SmallBufferFails(t *testing.T) {
	tmpDir := t.TempDir()
	fpath := filepath.Join(tmpDir, "long.txt")
	longLine := strings.Repeat("7", 1024)
	require.NoError(t, os.WriteFile(fpath, []byte(longLine+"\n"), 0o644))

	_, err := ReadLines(fpath, 64)
	require.Error(t, err)
}

func TestWriteAssignments_RoundTrip(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "assignments.txt")
	reducers := []int{3, 0, 15, 15, 7, 1}

	require.NoError(t, WriteAssignments(fpath, reducers))

	data, err := os.ReadFile(fpath)
	require.NoError(t, err)
	require.Equal(t, "3\n0\n15\n15\n7\n1", string(data))

	got, err := ReadAssignments(fpath)
	require.NoError(t, err)
	require.Equal(t, reducers, got)
}

func TestWriteAssignments_Empty(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, WriteAssignments(fpath, nil))

	got, err := ReadAssignments(fpath)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadAssignments_SkipsEmptyLines(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "gaps.txt")
	require.NoError(t, os.WriteFile(fpath, []byte("1\n\n2\n  \n3\n"), 0o644))

	got, err := ReadAssignments(fpath)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestReadAssignments_Malformed(t *testing.T) {
	for _, content := range []string{"1\nabc\n", "1\n-2\n", "1.5\n", "4 5\n"} {
		fpath := filepath.Join(t.TempDir(), "bad.txt")
		require.NoError(t, os.WriteFile(fpath, []byte(content), 0o644))

		_, err := ReadAssignments(fpath)
		require.ErrorIs(t, err, core.ErrInvalidArgument, "content %q", content)
	}
}

func TestReadAssignments_FileNotFound(t *testing.T) {
	_, err := ReadAssignments("/no/such/file/does_not_exist.txt")
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestWriteAssignments_FileNotWritable(t *testing.T) {
	tmpDir := t.TempDir()
	require.Error(t, WriteAssignments(tmpDir, []int{1}))
}

func TestReadRecords_Basic(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(fpath, []byte("1 2 3\n\n4294967295 0   7\n"), 0o644))

	records, err := ReadRecords(fpath)
	require.NoError(t, err)
	require.Equal(t, []core.Record{{1, 2, 3}, {4294967295, 0, 7}}, records)
}

func TestReadRecords_Malformed(t *testing.T) {
	cases := map[string]string{
		"width":    "1 2 3\n4 5\n",
		"overflow": "4294967296\n",
		"text":     "1 x\n",
	}
	for name, content := range cases {
		fpath := filepath.Join(t.TempDir(), "bad.txt")
		require.NoError(t, os.WriteFile(fpath, []byte(content), 0o644))

		_, err := ReadRecords(fpath)
		require.ErrorIs(t, err, core.ErrInvalidArgument, name)
	}
}

func TestReadRecordFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "batch"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "batch", "a.rec"), []byte("1 2\n3 4\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "batch", "b.rec"), []byte("5 6\n"), 0o644))

	records, err := ReadRecordFiles(filepath.Join(tmpDir, "**", "*.rec"))
	require.NoError(t, err)
	require.Len(t, records, 3)

	_, err = ReadRecordFiles(filepath.Join(tmpDir, "*.missing"))
	require.Error(t, err)
}
