package compare

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/sdejongh/filecompare/pkg/storage"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func info(size int64, modTime time.Time) *storage.FileInfo {
	return &storage.FileInfo{Size: size, ModTime: modTime, IsRegular: true}
}

func TestNewestWins(t *testing.T) {
	p := NewNewestWins(0)

	tests := []struct {
		name   string
		source *storage.FileInfo
		dest   *storage.FileInfo
		want   bool
	}{
		{"SourceNewer", info(5, base.Add(time.Second)), info(5, base), true},
		{"SourceNewerByNanosecond", info(5, base.Add(time.Nanosecond)), info(5, base), true},
		{"Equal", info(5, base), info(5, base), false},
		{"SourceOlder", info(5, base), info(5, base.Add(time.Hour)), false},
		{"SizeIgnored", info(1, base), info(100, base), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsStale(tt.source, tt.dest))
		})
	}

	assert.Equal(t, models.ReasonNewer, p.Reason())
	assert.Equal(t, models.NewestWins, p.Name())
}

func TestNewestWinsTolerance(t *testing.T) {
	p := NewNewestWins(2 * time.Second)

	assert.False(t, p.IsStale(info(1, base.Add(2*time.Second)), info(1, base)))
	assert.True(t, p.IsStale(info(1, base.Add(3*time.Second)), info(1, base)))

	negative := NewNewestWins(-time.Minute)
	assert.True(t, negative.IsStale(info(1, base.Add(time.Millisecond)), info(1, base)))
}

func TestLargestWins(t *testing.T) {
	p := NewLargestWins()

	tests := []struct {
		name   string
		source *storage.FileInfo
		dest   *storage.FileInfo
		want   bool
	}{
		{"SourceLarger", info(10, base), info(9, base), true},
		{"Equal", info(10, base), info(10, base), false},
		{"SourceSmaller", info(3, base), info(10, base), false},
		{"TimeIgnored", info(10, base.Add(time.Hour)), info(10, base), false},
		{"EmptyDest", info(1, base), info(0, base), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsStale(tt.source, tt.dest))
		})
	}

	assert.Equal(t, models.ReasonLarger, p.Reason())
	assert.Equal(t, models.LargestWins, p.Name())
}

func TestForPolicy(t *testing.T) {
	p, err := ForPolicy(models.NewestWins, 0)
	require.NoError(t, err)
	assert.IsType(t, &NewestWins{}, p)

	p, err = ForPolicy(models.LargestWins, 0)
	require.NoError(t, err)
	assert.IsType(t, &LargestWins{}, p)

	_, err = ForPolicy("md5", 0)
	assert.Error(t, err)
}

// TestHelper provides a source and destination directory on disk
type TestHelper struct {
	t      *testing.T
	root   string
	source *storage.Local
	dest   *storage.Local
}

// NewTestHelper creates source and dest directories under t.TempDir
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"source", "dest"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("failed to create %s dir: %v", dir, err)
		}
	}

	source, err := storage.NewLocal(filepath.Join(root, "source"))
	if err != nil {
		t.Fatalf("failed to create source backend: %v", err)
	}
	dest, err := storage.NewLocal(filepath.Join(root, "dest"))
	if err != nil {
		t.Fatalf("failed to create dest backend: %v", err)
	}

	return &TestHelper{t: t, root: root, source: source, dest: dest}
}

// CreateFile writes content to name on one side and sets its modification time
func (h *TestHelper) CreateFile(isSource bool, name string, content []byte, modTime time.Time) {
	h.t.Helper()
	side := "dest"
	if isSource {
		side = "source"
	}
	path := filepath.Join(h.root, side, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		h.t.Fatalf("failed to set mod time: %v", err)
	}
}

// Stale stats name on both sides and asks p whether the destination is stale
func (h *TestHelper) Stale(t *testing.T, p Policy, name string) bool {
	t.Helper()
	ctx := context.Background()
	src, err := h.source.Stat(ctx, name)
	if err != nil {
		t.Fatalf("failed to stat source: %v", err)
	}
	dst, err := h.dest.Stat(ctx, name)
	if err != nil {
		t.Fatalf("failed to stat dest: %v", err)
	}
	return p.IsStale(src, dst)
}

// TestPoliciesOnDisk checks both policies against files stat'ed from disk
func TestPoliciesOnDisk(t *testing.T) {
	h := NewTestHelper(t)

	h.CreateFile(true, "newer.txt", []byte("same"), base.Add(time.Minute))
	h.CreateFile(false, "newer.txt", []byte("same"), base)

	h.CreateFile(true, "larger.txt", []byte("larger body"), base)
	h.CreateFile(false, "larger.txt", []byte("small"), base.Add(time.Hour))

	h.CreateFile(true, "tie.txt", []byte("tie"), base)
	h.CreateFile(false, "tie.txt", []byte("tie"), base)

	tests := []struct {
		name   string
		policy Policy
		file   string
		want   bool
	}{
		{"NewestWins/Newer", NewNewestWins(0), "newer.txt", true},
		{"NewestWins/OlderButLarger", NewNewestWins(0), "larger.txt", false},
		{"NewestWins/Tie", NewNewestWins(0), "tie.txt", false},
		{"LargestWins/Larger", NewLargestWins(), "larger.txt", true},
		{"LargestWins/NewerSameSize", NewLargestWins(), "newer.txt", false},
		{"LargestWins/Tie", NewLargestWins(), "tie.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Stale(t, tt.policy, tt.file); got != tt.want {
				t.Errorf("IsStale(%s) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}
