package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shophub/storefront/internal/domain"
	apperrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/slug"
	"github.com/shophub/storefront/pkg/validator"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Hero is the store page banner.
type Hero struct {
	Title     string        `yaml:"title" validate:"required"`
	Highlight string        `yaml:"highlight"`
	Text      string        `yaml:"text"`
	Image     string        `yaml:"image" validate:"omitempty,url"`
	Promo     string        `yaml:"promo"`
	Stats     []domain.Stat `yaml:"stats"`
}

// StoreCategory is a sidebar entry on the store page.
type StoreCategory struct {
	Name  string `yaml:"name" validate:"required"`
	Count int    `yaml:"count" validate:"gte=0"`
}

// About is the content of the about page.
type About struct {
	Intro      string              `yaml:"intro"`
	Story      []string            `yaml:"story"`
	StoryImage string              `yaml:"story_image" validate:"omitempty,url"`
	Stats      []domain.Stat       `yaml:"stats"`
	Values     []domain.Value      `yaml:"values"`
	Team       []domain.TeamMember `yaml:"team"`
}

// Contact is the content of the contact page.
type Contact struct {
	Methods []domain.ContactMethod `yaml:"methods"`
	FAQs    []domain.FAQ           `yaml:"faqs"`
	Hours   []domain.OpeningHours  `yaml:"hours"`
	Address string                 `yaml:"address"`
}

type document struct {
	Store struct {
		Hero       Hero             `yaml:"hero" validate:"required"`
		Categories []StoreCategory  `yaml:"categories" validate:"dive"`
		Featured   []domain.Product `yaml:"featured" validate:"min=1,dive"`
	} `yaml:"store"`
	Products   []domain.Product       `yaml:"products" validate:"min=1,dive"`
	Details    []domain.ProductDetail `yaml:"details" validate:"dive"`
	Categories []domain.Category      `yaml:"categories" validate:"dive"`
	About      About                  `yaml:"about"`
	Contact    Contact                `yaml:"contact"`
}

// Catalog is the read-only product and content data behind every page. It
// is safe for concurrent use once loaded.
type Catalog struct {
	doc document

	featuredByID   map[string]int
	productsByID   map[string]int
	detailsByID    map[string]int
	categoryBySlug map[string]int
	categoryByID   map[string]int
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validator.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	c := &Catalog{doc: doc}
	if err := c.index(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) index() error {
	var err error
	if c.featuredByID, err = indexProducts("store.featured", c.doc.Store.Featured); err != nil {
		return err
	}
	if c.productsByID, err = indexProducts("products", c.doc.Products); err != nil {
		return err
	}

	c.detailsByID = make(map[string]int, len(c.doc.Details))
	for i, d := range c.doc.Details {
		if _, dup := c.detailsByID[d.ID]; dup {
			return fmt.Errorf("details: duplicate product id %q", d.ID)
		}
		if d.InStock && d.StockCount < 1 {
			return fmt.Errorf("details: product %q is in stock with stock_count %d", d.ID, d.StockCount)
		}
		c.detailsByID[d.ID] = i
	}

	c.categoryByID = make(map[string]int, len(c.doc.Categories))
	c.categoryBySlug = make(map[string]int, len(c.doc.Categories))
	for i := range c.doc.Categories {
		cat := &c.doc.Categories[i]
		cat.Slug = slug.Generate(cat.Name)
		if _, dup := c.categoryByID[cat.ID]; dup {
			return fmt.Errorf("categories: duplicate id %q", cat.ID)
		}
		if _, dup := c.categoryBySlug[cat.Slug]; dup {
			return fmt.Errorf("categories: %q and another category share slug %q", cat.Name, cat.Slug)
		}
		c.categoryByID[cat.ID] = i
		c.categoryBySlug[cat.Slug] = i
	}

	for _, list := range [][]domain.Product{c.doc.Store.Featured, c.doc.Products, c.detailProducts()} {
		for _, p := range list {
			if p.CategoryID == "" {
				continue
			}
			if _, ok := c.categoryByID[p.CategoryID]; !ok {
				return fmt.Errorf("product %q: unknown category_id %q", p.ID, p.CategoryID)
			}
		}
	}
	return nil
}

func indexProducts(section string, products []domain.Product) (map[string]int, error) {
	idx := make(map[string]int, len(products))
	for i, p := range products {
		if _, dup := idx[p.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate product id %q", section, p.ID)
		}
		idx[p.ID] = i
	}
	return idx, nil
}

func (c *Catalog) detailProducts() []domain.Product {
	out := make([]domain.Product, len(c.doc.Details))
	for i, d := range c.doc.Details {
		out[i] = d.Product
	}
	return out
}

// Hero returns the store page banner.
func (c *Catalog) Hero() Hero { return c.doc.Store.Hero }

// StoreCategories returns the store page sidebar entries.
func (c *Catalog) StoreCategories() []StoreCategory {
	return append([]StoreCategory(nil), c.doc.Store.Categories...)
}

// Featured returns the store page's product grid in catalog order.
func (c *Catalog) Featured() []domain.Product {
	return append([]domain.Product(nil), c.doc.Store.Featured...)
}

// Products returns the listing page's products in catalog order.
func (c *Catalog) Products() []domain.Product {
	return append([]domain.Product(nil), c.doc.Products...)
}

// Detail returns the full record for a product page.
func (c *Catalog) Detail(id string) (domain.ProductDetail, error) {
	i, ok := c.detailsByID[id]
	if !ok {
		return domain.ProductDetail{}, apperrors.NotFound("product", id)
	}
	return c.doc.Details[i], nil
}

// Categories returns every category with its slug filled in.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.doc.Categories...)
}

// Category looks a category up by slug.
func (c *Catalog) Category(slug string) (domain.Category, error) {
	i, ok := c.categoryBySlug[slug]
	if !ok {
		return domain.Category{}, apperrors.NotFound("category", slug)
	}
	return c.doc.Categories[i], nil
}

// About returns the about page content.
func (c *Catalog) About() About { return c.doc.About }

// Contact returns the contact page content.
func (c *Catalog) Contact() Contact { return c.doc.Contact }

// Offer is a product as one page sells it.
type Offer struct {
	Product domain.Product
	// Tracked is set when the page enforces stock; StockCount then bounds
	// the quantity a single add may request.
	Tracked    bool
	InStock    bool
	StockCount int
}

// Offer resolves a product ID against the product list of the given page.
// Pages keep separate lists, so the same ID can name different products on
// different pages.
func (c *Catalog) Offer(page domain.Page, id string) (Offer, error) {
	var (
		idx  map[string]int
		list []domain.Product
	)
	switch page {
	case domain.PageStore:
		idx, list = c.featuredByID, c.doc.Store.Featured
	case domain.PageProducts:
		idx, list = c.productsByID, c.doc.Products
	case domain.PageProductDetail:
		d, err := c.Detail(id)
		if err != nil {
			return Offer{}, err
		}
		return Offer{Product: d.CartProduct(), Tracked: true, InStock: d.InStock, StockCount: d.StockCount}, nil
	default:
		return Offer{}, apperrors.InvalidInput(fmt.Sprintf("page %q does not sell products", page))
	}

	i, ok := idx[id]
	if !ok {
		return Offer{}, apperrors.NotFound("product", id)
	}
	return Offer{Product: list[i], InStock: true}, nil
}

// Stats summarises catalog size for health reporting.
func (c *Catalog) Stats() map[string]int {
	return map[string]int{
		"featured":   len(c.doc.Store.Featured),
		"products":   len(c.doc.Products),
		"details":    len(c.doc.Details),
		"categories": len(c.doc.Categories),
	}
}
