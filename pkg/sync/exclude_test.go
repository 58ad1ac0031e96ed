package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcluder(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		want     bool
	}{
		{"NoPatterns", nil, "file.txt", false, false},
		{"SimpleGlob", []string{"*.tmp"}, "file.tmp", false, true},
		{"SimpleGlobNested", []string{"*.tmp"}, "a/b/file.tmp", false, true},
		{"SimpleGlobNoMatch", []string{"*.tmp"}, "file.txt", false, false},
		{"DirectoryPattern", []string{".git/"}, ".git", true, true},
		{"DirectoryPatternNested", []string{"node_modules/"}, "web/node_modules", true, true},
		{"DirectoryPatternIgnoresFile", []string{"build/"}, "build", false, false},
		{"PathPattern", []string{"build/*"}, "build/out.bin", false, true},
		{"DoubleStar", []string{"**/test/*.go"}, "pkg/x/test/a.go", false, true},
		{"Negation", []string{"*.log", "!keep.log"}, "keep.log", false, false},
		{"NegationOthers", []string{"*.log", "!keep.log"}, "drop.log", false, true},
		{"CommentsIgnored", []string{"# *.txt", ""}, "a.txt", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewExcluder(tt.patterns).Match(tt.path, tt.isDir))
		})
	}
}

func TestNewExcluderEmpty(t *testing.T) {
	assert.Nil(t, NewExcluder([]string{"", "  ", "# comment"}))

	var e *Excluder
	assert.False(t, e.Match("anything", false))
	assert.Nil(t, e.Patterns())

	assert.Equal(t, []string{"*.tmp"}, NewExcluder([]string{" *.tmp "}).Patterns())
}
