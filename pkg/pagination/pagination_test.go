package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{"empty", 0, 24, 1},
		{"one item", 1, 24, 1},
		{"exactly one page", 24, 24, 1},
		{"one over", 25, 24, 2},
		{"many", 1234, 24, 52},
		{"zero size", 100, 0, 1},
		{"negative total", -5, 24, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.size))
		})
	}
}

func TestLastPage(t *testing.T) {
	assert.Equal(t, 0, LastPage(0, 24))
	assert.Equal(t, 1, LastPage(25, 24))
	assert.Equal(t, 51, LastPage(1234, 24))
}

func TestHasPrevHasNext(t *testing.T) {
	assert.False(t, HasPrev(0))
	assert.True(t, HasPrev(1))

	assert.True(t, HasNext(0, 25, 24))
	assert.False(t, HasNext(1, 25, 24))
	assert.False(t, HasNext(0, 0, 24))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 24))
	assert.Equal(t, 48, Offset(2, 24))
	assert.Equal(t, 0, Offset(-1, 24))
	assert.Equal(t, 0, Offset(3, 0))
}
