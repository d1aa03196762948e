package catalog

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/pkg/pagination"
)

// Listing sort orders.
const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

// Listing filters.
const (
	FilterAll        = "all"
	FilterDiscounted = "discounted"
	FilterNew        = "new"
)

// NewBadge is the badge text that marks a product as new.
const NewBadge = "New"

// SortOption is an entry of the listing page's sort control.
type SortOption struct {
	Value string
	Label string
}

// SortOptions returns the sort control entries in display order.
func SortOptions() []SortOption {
	return []SortOption{
		{SortName, "Sort by Name"},
		{SortPriceLow, "Price: Low to High"},
		{SortPriceHigh, "Price: High to Low"},
		{SortRating, "Highest Rated"},
	}
}

// FilterOptions returns the filter control entries in display order.
func FilterOptions() []SortOption {
	return []SortOption{
		{FilterAll, "All Products"},
		{FilterDiscounted, "On Sale"},
		{FilterNew, "New Arrivals"},
	}
}

// ListingQuery selects and orders the listing page's products.
type ListingQuery struct {
	Sort     string
	Filter   string
	Search   string
	Category string // category slug
	Page     pagination.Params
}

// ParseListingQuery reads sort, filter, q, category, page and per_page.
// Unknown sort or filter values fall back to the defaults.
func ParseListingQuery(v url.Values) ListingQuery {
	q := ListingQuery{
		Sort:     v.Get("sort"),
		Filter:   v.Get("filter"),
		Search:   strings.TrimSpace(v.Get("q")),
		Category: v.Get("category"),
		Page:     pagination.FromValues(v),
	}
	return q.normalized()
}

func (q ListingQuery) normalized() ListingQuery {
	switch q.Sort {
	case SortName, SortPriceLow, SortPriceHigh, SortRating:
	default:
		q.Sort = SortName
	}
	switch q.Filter {
	case FilterAll, FilterDiscounted, FilterNew:
	default:
		q.Filter = FilterAll
	}
	if q.Page.PerPage == 0 {
		q.Page = pagination.DefaultParams()
	}
	return q
}

// Values encodes the query back into URL parameters, omitting defaults.
func (q ListingQuery) Values() url.Values {
	v := url.Values{}
	if q.Sort != "" && q.Sort != SortName {
		v.Set("sort", q.Sort)
	}
	if q.Filter != "" && q.Filter != FilterAll {
		v.Set("filter", q.Filter)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// ListingResult is one page of the filtered, sorted listing.
type ListingResult struct {
	Query    ListingQuery
	Category *domain.Category
	pagination.Result[domain.Product]
}

// Empty reports whether no product matched the query.
func (r ListingResult) Empty() bool { return r.TotalCount == 0 }

// Listing filters, sorts and paginates the listing page's products. The
// catalog itself is never reordered.
func (c *Catalog) Listing(q ListingQuery) ListingResult {
	q = q.normalized()
	res := ListingResult{Query: q}

	var categoryID string
	if q.Category != "" {
		cat, err := c.Category(q.Category)
		if err != nil {
			res.Result = pagination.NewResult[domain.Product](nil, 0, q.Page)
			return res
		}
		res.Category = &cat
		categoryID = cat.ID
	}

	fold := cases.Fold()
	needle := fold.String(q.Search)

	matched := make([]domain.Product, 0, len(c.doc.Products))
	for _, p := range c.doc.Products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if !matchesFilter(p, q.Filter) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}

	sortProducts(matched, q.Sort)
	res.Result = pagination.Paginate(matched, q.Page)
	return res
}

func matchesFilter(p domain.Product, filter string) bool {
	switch filter {
	case FilterDiscounted:
		return p.HasDiscount()
	case FilterNew:
		return p.Badge == NewBadge
	default:
		return true
	}
}

// sortProducts orders in place. Ties keep catalog order. Prices compare by
// list price.
func sortProducts(products []domain.Product, sortBy string) {
	switch sortBy {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	default:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
}
