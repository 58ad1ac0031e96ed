package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		dir := t.TempDir()
		local, err := NewLocal(dir)
		require.NoError(t, err)
		defer local.Close()
		assert.Equal(t, dir, local.Root())
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		assert.Error(t, err)
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := NewLocal(file)
		assert.Error(t, err)
	})

	t.Run("InMemory", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, mem.MkdirAll("/tree", 0755))
		local, err := NewLocalFs(mem, "/tree")
		require.NoError(t, err)
		assert.Equal(t, "/tree", local.Root())
	})
}

// TestLocalWalk tests the Walk method
func TestLocalWalk(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"b.txt":            "b",
		"a.txt":            "a",
		"subdir/file3.txt": "content3",
		"subdir/file4.txt": "content4",
	})

	local, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("LexicalOrder", func(t *testing.T) {
		var files []string
		var dirs []string
		err := local.Walk(ctx, func(rel string, info *FileInfo, err error) error {
			require.NoError(t, err)
			if info.IsDir {
				dirs = append(dirs, rel)
			} else {
				files = append(files, filepath.ToSlash(rel))
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt", "subdir/file3.txt", "subdir/file4.txt"}, files)
		assert.Equal(t, []string{"subdir"}, dirs)
	})

	t.Run("SkipDir", func(t *testing.T) {
		var files []string
		err := local.Walk(ctx, func(rel string, info *FileInfo, err error) error {
			if info.IsDir {
				return SkipDir
			}
			files = append(files, rel)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt"}, files)
	})

	t.Run("CallbackErrorStopsWalk", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := local.Walk(ctx, func(rel string, info *FileInfo, err error) error {
			count++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, count)
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := local.Walk(cctx, func(string, *FileInfo, error) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("SymlinkIsNotRegular", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}
		linkDir := t.TempDir()
		writeTree(t, linkDir, map[string]string{"target.txt": "t"})
		require.NoError(t, os.Symlink(filepath.Join(linkDir, "target.txt"), filepath.Join(linkDir, "link.txt")))

		l, err := NewLocal(linkDir)
		require.NoError(t, err)

		regular := map[string]bool{}
		require.NoError(t, l.Walk(ctx, func(rel string, info *FileInfo, err error) error {
			regular[rel] = info.IsRegular
			return nil
		}))
		assert.True(t, regular["target.txt"])
		assert.False(t, regular["link.txt"])
	})
}

func TestLocalWalkUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"locked/secret.txt": "s", "open.txt": "o"})
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	defer os.Chmod(locked, 0755)

	local, err := NewLocal(dir)
	require.NoError(t, err)

	var failed []string
	err = local.Walk(context.Background(), func(rel string, info *FileInfo, err error) error {
		if err != nil {
			failed = append(failed, rel)
			assert.Nil(t, info)
			return nil
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"locked"}, failed)
}

// TestLocalRead tests the Read method
func TestLocalRead(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"test.txt": "Hello, World!"})
	local, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("ReadExistingFile", func(t *testing.T) {
		reader, err := local.Read(ctx, "test.txt")
		require.NoError(t, err)
		defer reader.Close()
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "Hello, World!", string(data))
	})

	t.Run("ReadNonExistentFile", func(t *testing.T) {
		_, err := local.Read(ctx, "nonexistent.txt")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

// TestLocalWrite tests the Write method
func TestLocalWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesParents", func(t *testing.T) {
		dir := t.TempDir()
		local, err := NewLocal(dir)
		require.NoError(t, err)

		content := []byte("nested content")
		require.NoError(t, local.Write(ctx, "a/b/c/file.txt", bytes.NewReader(content), int64(len(content)), nil))

		data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c", "file.txt"))
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("OverwritesAndTruncates", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"f.txt": "a much longer original body"})
		local, err := NewLocal(dir)
		require.NoError(t, err)

		require.NoError(t, local.Write(ctx, "f.txt", strings.NewReader("short"), 5, nil))
		data, err := os.ReadFile(filepath.Join(dir, "f.txt"))
		require.NoError(t, err)
		assert.Equal(t, "short", string(data))
	})

	t.Run("PreservesMetadata", func(t *testing.T) {
		dir := t.TempDir()
		local, err := NewLocal(dir)
		require.NoError(t, err)

		modTime := time.Date(2020, 5, 17, 10, 30, 0, 0, time.UTC)
		meta := &FileInfo{ModTime: modTime, Permissions: 0600}
		require.NoError(t, local.Write(ctx, "meta.txt", strings.NewReader("m"), 1, meta))

		info, err := local.Stat(ctx, "meta.txt")
		require.NoError(t, err)
		assert.True(t, info.ModTime.Equal(modTime))
		if runtime.GOOS != "windows" {
			assert.Equal(t, uint32(0600), info.Permissions)
		}
	})

	t.Run("IncompleteWrite", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		require.NoError(t, err)
		err = local.Write(ctx, "short.txt", strings.NewReader("abc"), 10, nil)
		assert.ErrorContains(t, err, "incomplete write")
	})

	t.Run("FailedWriteRemovesPartialFile", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"f.txt": "previous destination content"})
		local, err := NewLocal(dir)
		require.NoError(t, err)

		body := io.MultiReader(strings.NewReader("part"), iotest.ErrReader(errors.New("source went away")))
		err = local.Write(ctx, "f.txt", body, 100, nil)
		assert.ErrorContains(t, err, "source went away")

		exists, err := local.Exists(ctx, "f.txt")
		require.NoError(t, err)
		assert.False(t, exists, "a truncated destination must not survive a failed write")
	})

	t.Run("IncompleteWriteRemovesPartialFile", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		require.NoError(t, err)
		require.Error(t, local.Write(ctx, "short.txt", strings.NewReader("abc"), 10, nil))

		exists, err := local.Exists(ctx, "short.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ParentIsFile", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"blocker": "x"})
		local, err := NewLocal(dir)
		require.NoError(t, err)
		err = local.Write(ctx, "blocker/child.txt", strings.NewReader("c"), 1, nil)
		assert.ErrorContains(t, err, "failed to create directory")
	})

	t.Run("MetadataFailureIsMarked", func(t *testing.T) {
		mem := afero.NewMemMapFs()
		require.NoError(t, mem.MkdirAll("/root", 0755))
		local, err := NewLocalFs(&noChtimesFs{Fs: mem}, "/root")
		require.NoError(t, err)

		err = local.Write(ctx, "f.txt", strings.NewReader("f"), 1, &FileInfo{ModTime: time.Now()})
		assert.ErrorIs(t, err, ErrMetadata)

		data, readErr := afero.ReadFile(mem, "/root/f.txt")
		require.NoError(t, readErr)
		assert.Equal(t, "f", string(data))
	})
}

// TestLocalStat tests Stat and Exists
func TestLocalStat(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"sub/data.bin": "0123456789"})
	local, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := local.Stat(ctx, filepath.Join("sub", "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
	assert.True(t, info.IsRegular)
	assert.False(t, info.IsDir)
	assert.Equal(t, filepath.Join("sub", "data.bin"), info.RelativePath)

	info, err = local.Stat(ctx, "sub")
	require.NoError(t, err)
	assert.True(t, info.IsDir)
	assert.False(t, info.IsRegular)

	_, err = local.Stat(ctx, "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	exists, err := local.Exists(ctx, "sub/data.bin")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = local.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalMkdirAll(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir)
	require.NoError(t, err)

	require.NoError(t, local.MkdirAll(context.Background(), filepath.Join("x", "y", "z")))
	info, err := os.Stat(filepath.Join(dir, "x", "y", "z"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

type noChtimesFs struct {
	afero.Fs
}

func (f *noChtimesFs) Chtimes(name string, atime, mtime time.Time) error {
	return &os.PathError{Op: "chtimes", Path: name, Err: os.ErrPermission}
}
