package urlstate

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/domain"
)

// Query parameter names.
const (
	ParamQuery      = "q"
	ParamBrands     = "brands"
	ParamCategories = "categories"
	ParamPage       = "page"
)

// Decode builds the search state carried by params. Malformed values fall
// back to their defaults.
func Decode(params url.Values) domain.SearchState {
	return domain.SearchState{
		Query:       params.Get(ParamQuery),
		BrandIDs:    DecodeCSV(params.Get(ParamBrands)),
		CategoryIDs: DecodeCSV(params.Get(ParamCategories)),
		Page:        DecodePage(params.Get(ParamPage)),
	}
}

// DecodePage parses a zero-based page index. Absent, negative, non-finite or
// fractional values yield 0.
func DecodePage(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// EncodePage renders a page index for the URL. Page 0 is the default and is
// encoded as absent.
func EncodePage(page int) string {
	if page <= 0 {
		return ""
	}
	return strconv.Itoa(page)
}
