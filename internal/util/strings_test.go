package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "nil slice returns (none)", items: nil, want: "(none)"},
		{name: "empty slice returns (none)", items: []string{}, want: "(none)"},
		{name: "single item returns item", items: []string{"sales"}, want: "sales"},
		{name: "multiple items joined", items: []string{"sales", "revenue"}, want: "sales, revenue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "no widgets", JoinOrDefault(nil, "no widgets"))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "no widgets"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		w    int
		want string
	}{
		{"Revenue", 10, "Revenue"},
		{"Revenue", 7, "Revenue"},
		{"Revenue", 5, "Reve…"},
		{"Revenue", 1, "R"},
		{"Revenue", 0, ""},
		{"Ünïcödé", 4, "Ünï…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.s, tt.w), "Truncate(%q, %d)", tt.s, tt.w)
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "cpu   ", PadRight("cpu", 6))
	assert.Equal(t, "memory", PadRight("memory", 3), "longer strings are left alone")
	assert.Equal(t, "✓ ok ", PadRight("✓ ok", 5))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "Perfo…", Fit("Performance", 6))
	assert.Equal(t, "Jan   ", Fit("Jan", 6))
}
