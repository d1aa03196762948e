package view

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/pkg/pagination"
	"github.com/shophub/storefront/pkg/validator"
)

// ProductCard is a product as its card renders it.
type ProductCard struct {
	ID          string
	Name        string
	Image       string
	Badge       string
	Discount    int
	HasDiscount bool
	Price       string // discounted, formatted
	ListPrice   string
	Rating      float64
	Stars       []bool // five entries, filled first
	ReviewCount int
	DetailURL   string
}

// NewProductCard builds the card for p.
func (m Money) NewProductCard(p domain.Product) ProductCard {
	return ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Image:       p.Image,
		Badge:       p.Badge,
		Discount:    p.Discount,
		HasDiscount: p.HasDiscount(),
		Price:       m.Format(p.DiscountedPrice()),
		ListPrice:   m.Format(p.Price),
		Rating:      p.Rating,
		Stars:       stars(p.FilledStars()),
		ReviewCount: p.ReviewCount,
		DetailURL:   "/products/" + url.PathEscape(p.ID),
	}
}

// ProductCards builds one card per product, in order.
func (m Money) ProductCards(products []domain.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, m.NewProductCard(p))
	}
	return cards
}

func stars(filled int) []bool {
	s := make([]bool, domain.MaxRating)
	for i := 0; i < filled && i < len(s); i++ {
		s[i] = true
	}
	return s
}

// CartLineView is one row of the cart drawer.
type CartLineView struct {
	ProductID    string
	Name         string
	Image        string
	Quantity     int
	UnitPrice    string
	ListPrice    string
	HasDiscount  bool
	Subtotal     string
	Decrement    int
	Increment    int
	CanDecrement bool
}

// CartDrawer is the slide-out cart shared by every page.
type CartDrawer struct {
	ViewID  string
	Open    bool
	Count   int
	Lines   []CartLineView
	Total   string
	Empty   bool
	Return  string // page the cart forms come back to
	Actions bool   // false on pages without a cart of their own
}

// ItemsURL is the add and quantity form target base for the view.
func (d CartDrawer) ItemsURL() string {
	return "/cart/" + url.PathEscape(d.ViewID) + "/items"
}

// OpenURL re-renders the page with the drawer open.
func (d CartDrawer) OpenURL() string { return ReturnURL(d.Return, d.ViewID, true) }

// CloseURL re-renders the page with the drawer closed.
func (d CartDrawer) CloseURL() string { return ReturnURL(d.Return, d.ViewID, false) }

// ReturnURL points back at a storefront page for view, optionally with the
// cart drawer open. returnTo must be a local path; anything else falls back
// to the store front.
func ReturnURL(returnTo, viewID string, open bool) string {
	u := LocalPath(returnTo)
	q := u.Query()
	q.Del("view")
	q.Del("cart")
	if viewID != "" {
		q.Set("view", viewID)
	}
	if open {
		q.Set("cart", "open")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// LocalPath parses a same-site path such as "/products?sort=rating". Absolute
// URLs, scheme-relative paths and unparsable input yield "/".
func LocalPath(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return &url.URL{Path: "/"}
	}
	return &url.URL{Path: u.Path, RawQuery: u.RawQuery}
}

// CardContext is what the product card partial renders: the card and the
// drawer whose view its add button targets.
type CardContext struct {
	Card ProductCard
	Cart CartDrawer
}

// NewCartDrawer builds the drawer for cart. A nil cart renders the empty
// drawer of a page that keeps no cart.
func (m Money) NewCartDrawer(cart *domain.Cart, open bool, returnTo string) CartDrawer {
	d := CartDrawer{Open: open, Return: returnTo, Empty: true, Total: m.Format(decimal.Zero)}
	if cart == nil {
		return d
	}

	d.ViewID = cart.ID
	d.Actions = true
	d.Count = cart.ItemCount()
	d.Total = m.Format(cart.Total())
	d.Empty = cart.IsEmpty()
	d.Lines = make([]CartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		d.Lines = append(d.Lines, CartLineView{
			ProductID:    l.Product.ID,
			Name:         l.Product.Name,
			Image:        l.Product.Image,
			Quantity:     l.Quantity,
			UnitPrice:    m.Format(l.UnitPrice()),
			ListPrice:    m.Format(l.Product.Price),
			HasDiscount:  l.Product.HasDiscount(),
			Subtotal:     m.Format(l.Subtotal()),
			Decrement:    l.Quantity - 1,
			Increment:    l.Quantity + 1,
			CanDecrement: l.Quantity > 1,
		})
	}
	return d
}

// Layout is the data every page shell needs.
type Layout struct {
	StoreName string
	Title     string
	Active    domain.Page
	Search    string
	Cart      CartDrawer
	Notice    *domain.Notice
	Year      int
}

// NavLink is a header navigation entry.
type NavLink struct {
	Page  domain.Page
	Label string
	URL   string
}

// Nav returns the header navigation entries.
func (Layout) Nav() []NavLink {
	return []NavLink{
		{domain.PageStore, "Home", "/"},
		{domain.PageProducts, "Products", "/products"},
		{domain.PageCategories, "Categories", "/categories"},
		{domain.PageAbout, "About", "/about"},
		{domain.PageContact, "Contact", "/contact"},
	}
}

// StorePage is the store front.
type StorePage struct {
	Layout
	Hero       catalog.Hero
	Categories []catalog.StoreCategory
	Products   []ProductCard
}

// ListingPage is the product listing.
type ListingPage struct {
	Layout
	Query         catalog.ListingQuery
	Category      *domain.Category
	Products      []ProductCard
	SortOptions   []catalog.SortOption
	FilterOptions []catalog.SortOption
	Page          pagination.Result[domain.Product]
	EmptyMessage  string
}

// PageURL links to another page of the same listing.
func (p ListingPage) PageURL(n int) string {
	v := p.Query.Values()
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if p.Query.Page.PerPage != pagination.DefaultPerPage {
		v.Set("per_page", strconv.Itoa(p.Query.Page.PerPage))
	}
	if len(v) == 0 {
		return "/products"
	}
	return "/products?" + v.Encode()
}

// EmptyListingMessage is shown when no product matches the listing query.
const EmptyListingMessage = "No products found matching your criteria."

// NewListingPage builds the listing page from a listing result.
func (m Money) NewListingPage(layout Layout, res catalog.ListingResult) ListingPage {
	return ListingPage{
		Layout:        layout,
		Query:         res.Query,
		Category:      res.Category,
		Products:      m.ProductCards(res.Data),
		SortOptions:   catalog.SortOptions(),
		FilterOptions: catalog.FilterOptions(),
		Page:          res.Result,
		EmptyMessage:  EmptyListingMessage,
	}
}

// Detail tabs.
const (
	TabDescription    = "description"
	TabSpecifications = "specifications"
	TabReviews        = "reviews"
)

// DetailTabs returns the detail page tabs in display order.
func DetailTabs() []string {
	return []string{TabDescription, TabSpecifications, TabReviews}
}

// ReviewView is a review with its stars and display date.
type ReviewView struct {
	domain.Review
	Stars []bool
	When  string
}

// DetailPage is a product's own page.
type DetailPage struct {
	Layout
	Card        ProductCard
	Detail      domain.ProductDetail
	Images      []string
	Selected    int
	Tab         string
	Tabs        []string
	Quantity    int
	MaxQuantity int
	Reviews     []ReviewView
	Savings     string
	StockLabel  string
}

// NewDetailPage builds the detail page. image selects the gallery image,
// tab the open tab and qty the quantity selector; each is clamped to what
// the product offers.
func (m Money) NewDetailPage(layout Layout, d domain.ProductDetail, image int, tab string, qty int) DetailPage {
	if image < 0 || image >= len(d.Images) {
		image = 0
	}
	switch tab {
	case TabDescription, TabSpecifications, TabReviews:
	default:
		tab = TabDescription
	}

	card := m.NewProductCard(d.Product)
	if len(d.Images) > 0 {
		card.Image = d.Images[image]
	}

	page := DetailPage{
		Layout:   layout,
		Card:     card,
		Detail:   d,
		Images:   d.Images,
		Selected: image,
		Tab:      tab,
		Tabs:     DetailTabs(),
		Quantity: 1,
	}
	if d.InStock {
		page.Quantity = d.ClampQuantity(qty)
		page.MaxQuantity = d.StockCount
		page.StockLabel = fmt.Sprintf("In Stock (%d available)", d.StockCount)
	} else {
		page.StockLabel = "Out of Stock"
	}
	if d.HasDiscount() {
		page.Savings = m.Format(d.Price.Sub(d.DiscountedPrice()))
	}
	for _, r := range d.Reviews {
		when := r.Date
		if t := r.Posted(); !t.IsZero() {
			when = t.Format("January 2, 2006")
		}
		page.Reviews = append(page.Reviews, ReviewView{Review: r, Stars: stars(r.Rating), When: when})
	}
	return page
}

// GalleryLink links to the detail page with image i selected.
func (p DetailPage) GalleryLink(i int) string {
	v := url.Values{}
	if i > 0 {
		v.Set("image", strconv.Itoa(i))
	}
	if p.Tab != TabDescription {
		v.Set("tab", p.Tab)
	}
	if p.Cart.ViewID != "" {
		v.Set("view", p.Cart.ViewID)
	}
	return withQuery(p.Card.DetailURL, v)
}

// TabLink links to the detail page with tab open.
func (p DetailPage) TabLink(tab string) string {
	v := url.Values{}
	if p.Selected > 0 {
		v.Set("image", strconv.Itoa(p.Selected))
	}
	if tab != TabDescription {
		v.Set("tab", tab)
	}
	if p.Cart.ViewID != "" {
		v.Set("view", p.Cart.ViewID)
	}
	return withQuery(p.Card.DetailURL, v)
}

// CategoriesPage lists the categories.
type CategoriesPage struct {
	Layout
	Categories []domain.Category
}

// AboutPage is the about page.
type AboutPage struct {
	Layout
	About catalog.About
}

// ContactPage is the contact page and its form.
type ContactPage struct {
	Layout
	Contact catalog.Contact
	Form    ContactForm
	Errors  map[string]string
}

// ContactForm holds the values the form is re-rendered with.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// FormErrors extracts per-field messages from a validation error.
func FormErrors(err error) map[string]string {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields()
	}
	return map[string]string{"form": "Your message could not be sent."}
}

// ErrorPage renders a failed request.
type ErrorPage struct {
	Layout
	Status  int
	Message string
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
