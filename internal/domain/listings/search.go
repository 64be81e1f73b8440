package listings

import (
	"strings"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByNewest    CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 100
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Owner    OwnerID
	Country  string
	Query    string
	PriceMin int64
	PriceMax int64
	Sort     CatalogSort
	Limit    int
	Offset   int
}

type SearchResult struct {
	Items []*Listing
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.Country = strings.TrimSpace(strings.ToLower(n.Country))
	n.Query = strings.TrimSpace(strings.ToLower(n.Query))
	if n.PriceMin < 0 {
		n.PriceMin = 0
	}
	if n.PriceMax > 0 && n.PriceMax < n.PriceMin {
		n.PriceMax = 0
	}
	if n.Limit <= 0 {
		n.Limit = defaultSearchLimit
	}
	if n.Limit > maxSearchLimit {
		n.Limit = maxSearchLimit
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	switch n.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByNewest:
	default:
		n.Sort = SortByNewest
	}
	return n
}

// Matches applies the filters of normalized params to a listing.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.Owner != "" && l.Owner != p.Owner {
		return false
	}
	if p.Country != "" && !strings.EqualFold(l.Country, p.Country) {
		return false
	}
	if p.PriceMin > 0 && l.NightlyRate.Amount < p.PriceMin {
		return false
	}
	if p.PriceMax > 0 && l.NightlyRate.Amount > p.PriceMax {
		return false
	}
	if p.Query != "" {
		haystack := strings.ToLower(strings.Join([]string{l.Title, l.Location, l.Country}, " "))
		if !strings.Contains(haystack, p.Query) {
			return false
		}
	}
	return true
}
