package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/storefront/internal/domain"
	apperrors "github.com/shophub/storefront/pkg/errors"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

const minimalCatalog = `
store:
  hero: { title: Discover }
  featured:
    - { id: "1", name: Mug, price: "9.50", image: "https://img.example.com/mug.jpg" }
products:
  - { id: "1", name: Mug, price: "9.50", image: "https://img.example.com/mug.jpg", category_id: "1" }
categories:
  - { id: "1", name: Home & Garden }
`

// ============================================================================
// Loading
// ============================================================================

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c := mustDefault(t)

	assert.Len(t, c.Featured(), 6)
	assert.Len(t, c.Products(), 6)
	assert.Len(t, c.Categories(), 6)
	assert.Len(t, c.StoreCategories(), 6)
	assert.Equal(t, "Discover Amazing", c.Hero().Title)
	assert.Equal(t, 6, c.Stats()["details"])

	first := c.Featured()[0]
	assert.Equal(t, "Wireless Bluetooth Headphones", first.Name)
	assert.Equal(t, "79.99", first.Price.StringFixed(2))
	assert.Equal(t, 20, first.Discount)
	assert.Equal(t, "Best Seller", first.Badge)
}

func TestDefault_ContentPages(t *testing.T) {
	c := mustDefault(t)

	about := c.About()
	assert.Len(t, about.Team, 3)
	assert.Equal(t, "Sarah Johnson", about.Team[0].Name)
	assert.Len(t, about.Values, 4)
	assert.Equal(t, "99.8%", about.Stats[3].Value)

	contact := c.Contact()
	assert.Len(t, contact.Methods, 4)
	assert.Equal(t, "support@shophub.com", contact.Methods[0].Contact)
	assert.Len(t, contact.FAQs, 4)
	assert.Equal(t, "Closed", contact.Hours[2].Hours)
}

func TestLoad_Minimal(t *testing.T) {
	c, err := Load(strings.NewReader(minimalCatalog))
	require.NoError(t, err)

	cat, err := c.Category("home-and-garden")
	require.NoError(t, err)
	assert.Equal(t, "Home & Garden", cat.Name)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "store: [",
			wantErr: "decode catalog",
		},
		{
			name:    "unknown field",
			yaml:    strings.Replace(minimalCatalog, "hero: { title: Discover }", "hero: { title: Discover, colour: red }", 1),
			wantErr: "decode catalog",
		},
		{
			name:    "zero price",
			yaml:    strings.Replace(minimalCatalog, `price: "9.50", image: "https://img.example.com/mug.jpg", category_id`, `price: "0", image: "https://img.example.com/mug.jpg", category_id`, 1),
			wantErr: "products[0].price",
		},
		{
			name:    "no products",
			yaml:    strings.Replace(minimalCatalog, "products:\n  - { id: \"1\", name: Mug, price: \"9.50\", image: \"https://img.example.com/mug.jpg\", category_id: \"1\" }", "products: []", 1),
			wantErr: "products",
		},
		{
			name:    "colliding category slugs",
			yaml:    minimalCatalog + "  - { id: \"2\", name: Home and Garden }\n",
			wantErr: `share slug "home-and-garden"`,
		},
		{
			name:    "unknown category reference",
			yaml:    strings.Replace(minimalCatalog, `category_id: "1"`, `category_id: "9"`, 1),
			wantErr: `unknown category_id "9"`,
		},
		{
			name: "in stock without stock",
			yaml: minimalCatalog + `details:
  - { id: "1", name: Mug, price: "9.50", image: "https://img.example.com/mug.jpg", images: ["https://img.example.com/mug.jpg"], in_stock: true, stock_count: 0 }
`,
			wantErr: "in stock with stock_count 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DuplicateProductID(t *testing.T) {
	doc := strings.Replace(minimalCatalog,
		"products:\n",
		"products:\n  - { id: \"1\", name: Cup, price: \"3\", image: \"https://img.example.com/cup.jpg\" }\n", 1)

	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `products: duplicate product id "1"`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Products(), 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open catalog")
}

// ============================================================================
// Lookups
// ============================================================================

func TestDetail(t *testing.T) {
	c := mustDefault(t)

	d, err := c.Detail("1")
	require.NoError(t, err)
	assert.Len(t, d.Images, 3)
	assert.Len(t, d.Features, 6)
	assert.Len(t, d.Specifications, 7)
	assert.Equal(t, 15, d.StockCount)
	require.Len(t, d.Reviews, 3)
	assert.Equal(t, "John D.", d.Reviews[0].Author)
	assert.Equal(t, 2024, d.Reviews[0].Posted().Year())

	_, err = c.Detail("999")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCategories_HaveSlugs(t *testing.T) {
	c := mustDefault(t)

	slugs := make([]string, 0)
	for _, cat := range c.Categories() {
		slugs = append(slugs, cat.Slug)
	}
	assert.Equal(t, []string{
		"electronics", "clothing-and-fashion", "home-and-garden",
		"sports-and-outdoors", "books-and-media", "beauty-and-health",
	}, slugs)

	_, err := c.Category("toys")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAccessors_ReturnCopies(t *testing.T) {
	c := mustDefault(t)

	products := c.Products()
	products[0].Name = "changed"

	assert.Equal(t, "Wireless Bluetooth Headphones", c.Products()[0].Name)
}

func TestOffer(t *testing.T) {
	c := mustDefault(t)

	store, err := c.Offer(domain.PageStore, "2")
	require.NoError(t, err)
	assert.Equal(t, "Smart Watch Series 5", store.Product.Name)
	assert.False(t, store.Tracked)

	listing, err := c.Offer(domain.PageProducts, "2")
	require.NoError(t, err)
	assert.Equal(t, "Smart Fitness Watch", listing.Product.Name)

	detail, err := c.Offer(domain.PageProductDetail, "1")
	require.NoError(t, err)
	assert.True(t, detail.Tracked)
	assert.True(t, detail.InStock)
	assert.Equal(t, 15, detail.StockCount)
	assert.Contains(t, detail.Product.Image, "w=600")

	soldOut, err := c.Offer(domain.PageProductDetail, "5")
	require.NoError(t, err)
	assert.False(t, soldOut.InStock)

	_, err = c.Offer(domain.PageStore, "404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = c.Offer(domain.PageAbout, "1")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
