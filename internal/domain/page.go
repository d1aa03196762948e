package domain

// Page identifies one of the storefront's page views.
type Page string

// Storefront pages.
const (
	PageStore         Page = "store"
	PageProducts      Page = "products"
	PageProductDetail Page = "product-detail"
	PageCategories    Page = "categories"
	PageAbout         Page = "about"
	PageContact       Page = "contact"
)

// ValidPages returns every page the storefront renders.
func ValidPages() []Page {
	return []Page{PageStore, PageProducts, PageProductDetail, PageCategories, PageAbout, PageContact}
}

// IsValidPage checks whether the given string names a storefront page.
func IsValidPage(page string) bool {
	for _, p := range ValidPages() {
		if string(p) == page {
			return true
		}
	}
	return false
}

// SellsProducts reports whether the page shows product cards and therefore
// keeps a cart of its own. The about, categories and contact pages only show
// an empty drawer.
func (p Page) SellsProducts() bool {
	switch p {
	case PageStore, PageProducts, PageProductDetail:
		return true
	}
	return false
}
