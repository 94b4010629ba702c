package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_SetsAndRemoves(t *testing.T) {
	current := url.Values{
		"q":      {"shoe"},
		"brands": {"5"},
		"page":   {"2"},
		"ref":    {"home"},
	}

	next := Apply(current, Patch{
		ParamBrands: "",
		ParamPage:   "",
		ParamQuery:  "boot",
	})

	assert.Equal(t, url.Values{"q": {"boot"}, "ref": {"home"}}, next)
	// The input is left alone.
	assert.Equal(t, "5", current.Get("brands"))
	assert.Equal(t, "shoe", current.Get("q"))
}

func TestApply_RemovingMissingKeyIsNoop(t *testing.T) {
	next := Apply(url.Values{"q": {"x"}}, Patch{ParamCategories: ""})
	assert.Equal(t, url.Values{"q": {"x"}}, next)
}

func TestApply_NilCurrent(t *testing.T) {
	next := Apply(nil, Patch{ParamBrands: "1,2"})
	assert.Equal(t, "brands=1%2C2", next.Encode())
}

func TestToggle(t *testing.T) {
	assert.Equal(t, []int64{5}, Toggle(nil, 5))
	assert.Equal(t, []int64{}, Toggle([]int64{5}, 5))
	assert.Equal(t, []int64{1, 3, 2}, Toggle([]int64{1, 3}, 2))
	assert.Equal(t, []int64{1, 3}, Toggle([]int64{1, 2, 3}, 2))

	ids := []int64{4, 6}
	_ = Toggle(ids, 4)
	assert.Equal(t, []int64{4, 6}, ids)
}

func TestToggle_OnThenOffRemovesParam(t *testing.T) {
	params := url.Values{}

	on := Apply(params, Patch{ParamBrands: EncodeCSV(Toggle(DecodeCSV(params.Get(ParamBrands)), 5))})
	assert.Equal(t, "5", on.Get(ParamBrands))

	off := Apply(on, Patch{ParamBrands: EncodeCSV(Toggle(DecodeCSV(on.Get(ParamBrands)), 5))})
	_, present := off[ParamBrands]
	assert.False(t, present)
}
