package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	path := "/data/libmgr/nested"
	require.NoError(t, EnsureDir(fs, path, 0755))
	assert.True(t, IsDir(fs, path))

	// idempotent
	assert.NoError(t, EnsureDir(fs, path, 0755))
}

func TestExistsAndIsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/test.txt", []byte("test"), 0644))

	tests := []struct {
		name      string
		path      string
		wantExist bool
		wantDir   bool
	}{
		{"existing file", "/test.txt", true, false},
		{"root dir", "/", true, true},
		{"missing", "/nonexistent.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExist, Exists(fs, tt.path))
			assert.Equal(t, tt.wantDir, IsDir(fs, tt.path))
		})
	}
}

func TestCheckWritable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/writable", 0755))

	assert.NoError(t, CheckWritable(fs, "/writable"))
	entries, err := afero.ReadDir(fs, "/writable")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, CheckWritable(afero.NewReadOnlyFs(fs), "/writable"))
}

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/out/requirements.txt"

	require.NoError(t, WriteFileAtomic(fs, path, []byte("rich==13.7.1\n"), 0644))
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "rich==13.7.1\n", string(data))

	// replaces existing content and leaves no temp files behind
	require.NoError(t, WriteFileAtomic(fs, path, []byte("numpy==1.26.4\n"), 0644))
	data, err = afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "numpy==1.26.4\n", string(data))

	entries, err := afero.ReadDir(fs, filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_OSFs(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "requirements.txt")

	require.NoError(t, WriteFileAtomic(fs, path, []byte("attrs==23.2.0\n"), 0600))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWriteFileAtomic_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, WriteFileAtomic(fs, "/x/requirements.txt", []byte("x"), 0644))
}
