package urlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCSV(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{name: "absent", raw: "", want: []int64{}},
		{name: "single", raw: "5", want: []int64{5}},
		{name: "keeps order", raw: "3,1,2", want: []int64{3, 1, 2}},
		{name: "drops blanks and junk", raw: "1,,abc,3", want: []int64{1, 3}},
		{name: "trims whitespace", raw: " 4 , 7 ,", want: []int64{4, 7}},
		{name: "drops non-finite", raw: "NaN,Inf,-Inf,8", want: []int64{8}},
		{name: "drops fractions", raw: "1.5,2.0", want: []int64{2}},
		{name: "exponent notation", raw: "1e2", want: []int64{100}},
		{name: "only separators", raw: ",,,", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCSV(tt.raw))
		})
	}
}

func TestEncodeCSV(t *testing.T) {
	assert.Equal(t, "", EncodeCSV(nil))
	assert.Equal(t, "", EncodeCSV([]int64{}))
	assert.Equal(t, "5", EncodeCSV([]int64{5}))
	assert.Equal(t, "9,2,14", EncodeCSV([]int64{9, 2, 14}))
}

func TestCSV_RoundTrip(t *testing.T) {
	for _, ids := range [][]int64{
		{0},
		{1, 2, 3},
		{42, 7, 42000000000},
	} {
		assert.Equal(t, ids, DecodeCSV(EncodeCSV(ids)))
	}
}
