package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/filecompare/pkg/compare"
	"github.com/sdejongh/filecompare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_MissingFilesAlwaysCandidates(t *testing.T) {
	for _, policy := range []compare.Policy{compare.NewNewestWins(0), compare.NewLargestWins()} {
		t.Run(string(policy.Name()), func(t *testing.T) {
			mem := memTree(t)
			putFile(t, mem, "/src/a.txt", "12345", baseTime)
			putFile(t, mem, "/src/sub/b.txt", "0123456789", baseTime)
			// an older, smaller destination file must not hide the missing ones
			putFile(t, mem, "/dst/other.txt", "x", baseTime.Add(-time.Hour))

			source, dest := backends(t, mem, mem)
			diff, err := NewDifferencer(source, dest, policy, DiffOptions{}).Diff(context.Background())
			require.NoError(t, err)

			assert.Equal(t, []string{"a.txt", filepath.Join("sub", "b.txt")}, diff.RelativePaths())
			for _, c := range diff.Candidates {
				assert.Equal(t, models.ReasonMissing, c.Reason)
			}
			assert.Equal(t, int64(15), diff.TotalBytes)
			assert.Equal(t, 2, diff.FilesScanned)
			assert.Equal(t, policy.Name(), diff.Policy)
		})
	}
}

func TestDiff_CandidateFields(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/sub/b.txt", "0123456789", baseTime)

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, diff.Len())

	c := diff.Candidates[0]
	assert.Equal(t, filepath.Join("/src", "sub", "b.txt"), c.SourcePath)
	assert.Equal(t, filepath.Join("/dst", "sub", "b.txt"), c.DestPath)
	assert.Equal(t, int64(10), c.Size)
	assert.True(t, c.ModTime.Equal(baseTime))
	assert.Equal(t, models.DirectoryPair{SourceRoot: "/src", DestRoot: "/dst"}, diff.Pair)
}

func TestDiff_NewestWins(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/newer.txt", "same", baseTime)
	putFile(t, mem, "/dst/newer.txt", "same", baseTime.Add(-time.Second))
	putFile(t, mem, "/src/tie.txt", "short", baseTime)
	putFile(t, mem, "/dst/tie.txt", "a much longer body", baseTime)
	putFile(t, mem, "/src/older.txt", "a much longer body", baseTime.Add(-time.Hour))
	putFile(t, mem, "/dst/older.txt", "x", baseTime)

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"newer.txt"}, diff.RelativePaths())
	assert.Equal(t, models.ReasonNewer, diff.Candidates[0].Reason)
	assert.Equal(t, 3, diff.FilesScanned)
}

func TestDiff_NewestWinsTolerance(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/a.txt", "a", baseTime)
	putFile(t, mem, "/dst/a.txt", "a", baseTime.Add(-time.Second))
	putFile(t, mem, "/src/b.txt", "b", baseTime)
	putFile(t, mem, "/dst/b.txt", "b", baseTime.Add(-5*time.Second))

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(2*time.Second), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, diff.RelativePaths())
}

func TestDiff_LargestWins(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/larger.txt", "0123456789", baseTime.Add(-time.Hour))
	putFile(t, mem, "/dst/larger.txt", "01234", baseTime)
	putFile(t, mem, "/src/tie.txt", "12345", baseTime)
	putFile(t, mem, "/dst/tie.txt", "abcde", baseTime.Add(-time.Hour))
	putFile(t, mem, "/src/smaller.txt", "1", baseTime)
	putFile(t, mem, "/dst/smaller.txt", "12345", baseTime.Add(-time.Hour))

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewLargestWins(), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"larger.txt"}, diff.RelativePaths())
	assert.Equal(t, models.ReasonLarger, diff.Candidates[0].Reason)
	assert.Equal(t, int64(10), diff.TotalBytes)
}

func TestDiff_TotalBytesIsExactSum(t *testing.T) {
	mem := memTree(t)
	var want int64
	for i, body := range []string{"", "a", "bb", "cccccccc", "dddddddddddddddd"} {
		putFile(t, mem, filepath.Join("/src", "d", string(rune('a'+i))+".bin"), body, baseTime)
		want += int64(len(body))
	}

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewLargestWins(), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)

	var sum int64
	for _, c := range diff.Candidates {
		sum += c.Size
	}
	assert.Equal(t, 5, diff.Len())
	assert.Equal(t, want, diff.TotalBytes)
	assert.Equal(t, sum, diff.TotalBytes)
}

func TestDiff_DestNotRegular(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/a.txt", "a", baseTime)
	require.NoError(t, mem.MkdirAll("/dst/a.txt", 0755))

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), DiffOptions{}).Diff(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, diff.Len())
	assert.Equal(t, models.ReasonDestNotRegular, diff.Candidates[0].Reason)
}

func TestDiff_Exclude(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/keep.txt", "k", baseTime)
	putFile(t, mem, "/src/scratch.tmp", "t", baseTime)
	putFile(t, mem, "/src/build/out.bin", "b", baseTime)
	putFile(t, mem, "/src/docs/build.txt", "d", baseTime)

	source, dest := backends(t, mem, mem)
	opts := DiffOptions{Exclude: NewExcluder([]string{"*.tmp", "build/"})}
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), opts).Diff(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join("docs", "build.txt"), "keep.txt"}, diff.RelativePaths())
	assert.Equal(t, 2, diff.FilesScanned)
}

func TestDiff_WalkErrorAborts(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/a.txt", "a", baseTime)
	putFile(t, mem, "/src/locked/secret.txt", "s", baseTime)
	putFile(t, mem, "/src/z.txt", "z", baseTime)

	srcFs := &faultyFs{Fs: mem, failOpen: map[string]bool{"/src/locked": true}}
	source, dest := backends(t, srcFs, mem)

	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), DiffOptions{}).Diff(context.Background())
	assert.Nil(t, diff)

	var we *models.WalkError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, filepath.Join("/src", "locked"), we.Path)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestDiff_WalkErrorSkip(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/a.txt", "a", baseTime)
	putFile(t, mem, "/src/locked/secret.txt", "s", baseTime)
	putFile(t, mem, "/src/z.txt", "z", baseTime)

	srcFs := &faultyFs{Fs: mem, failOpen: map[string]bool{"/src/locked": true}}
	source, dest := backends(t, srcFs, mem)

	opts := DiffOptions{WalkErrors: models.WalkSkip}
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), opts).Diff(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "z.txt"}, diff.RelativePaths())
	require.Len(t, diff.Skipped, 1)
	assert.Equal(t, "locked", diff.Skipped[0].RelativePath)
	assert.Contains(t, diff.Skipped[0].Error, "permission denied")
}

func TestDiff_Cancelled(t *testing.T) {
	mem := memTree(t)
	putFile(t, mem, "/src/a.txt", "a", baseTime)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source, dest := backends(t, mem, mem)
	diff, err := NewDifferencer(source, dest, compare.NewNewestWins(0), DiffOptions{}).Diff(ctx)
	assert.Nil(t, diff)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiff_SourceSymlinkSkipped(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeOSFile(t, filepath.Join(src, "real.txt"), "r", baseTime)
	require.NoError(t, os.MkdirAll(dst, 0755))
	if err := os.Symlink(filepath.Join(src, "real.txt"), filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	diff, err := Diff(context.Background(), models.DirectoryPair{SourceRoot: src, DestRoot: dst}, models.NewestWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, diff.RelativePaths())
}

func TestDiff_PackageLevelValidatesPair(t *testing.T) {
	root := t.TempDir()

	_, err := Diff(context.Background(), models.DirectoryPair{SourceRoot: root, DestRoot: filepath.Join(root, "missing")}, models.NewestWins)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "DestRoot", ve.Field)

	require.NoError(t, os.Mkdir(filepath.Join(root, "d"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "s"), 0755))
	_, err = Diff(context.Background(), models.DirectoryPair{SourceRoot: filepath.Join(root, "s"), DestRoot: filepath.Join(root, "d")}, "hash")
	assert.Error(t, err)
}
