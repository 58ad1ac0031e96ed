package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/filecompare/pkg/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// memTree creates an in-memory filesystem holding a source and a destination root
func memTree(t *testing.T) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/src", 0755))
	require.NoError(t, mem.MkdirAll("/dst", 0755))
	return mem
}

func putFile(t *testing.T, fsys afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	require.NoError(t, fsys.Chtimes(path, mtime, mtime))
}

func backends(t *testing.T, srcFs, dstFs afero.Fs) (*storage.Local, *storage.Local) {
	t.Helper()
	source, err := storage.NewLocalFs(srcFs, "/src")
	require.NoError(t, err)
	dest, err := storage.NewLocalFs(dstFs, "/dst")
	require.NoError(t, err)
	return source, dest
}

func writeOSFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// faultyFs fails selected operations on selected paths
type faultyFs struct {
	afero.Fs
	failOpen  map[string]bool
	failWrite map[string]bool
	failTimes bool
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	if f.failOpen[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failWrite[name] && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *faultyFs) Chtimes(name string, atime, mtime time.Time) error {
	if f.failTimes {
		return &os.PathError{Op: "chtimes", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Chtimes(name, atime, mtime)
}
