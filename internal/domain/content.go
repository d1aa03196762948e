package domain

import "time"

// ReviewDateLayout is the layout of Review.Date.
const ReviewDateLayout = "2006-01-02"

// Specification is one row of a product's technical data sheet.
type Specification struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Value string `json:"value" yaml:"value" validate:"required"`
}

// Review is a customer review shown on the product detail page.
type Review struct {
	ID      int    `json:"id" yaml:"id"`
	Author  string `json:"author" yaml:"author" validate:"required"`
	Rating  int    `json:"rating" yaml:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" yaml:"comment"`
	Date    string `json:"date" yaml:"date" validate:"datetime=2006-01-02"`
}

// Posted returns the review date, or the zero time when it does not parse.
func (r Review) Posted() time.Time {
	t, _ := time.Parse(ReviewDateLayout, r.Date)
	return t
}

// ProductDetail is the full record rendered on a product's own page.
type ProductDetail struct {
	Product        `yaml:",inline"`
	Images         []string        `json:"images" yaml:"images" validate:"min=1,dive,url"`
	Description    string          `json:"description" yaml:"description"`
	Features       []string        `json:"features" yaml:"features"`
	Specifications []Specification `json:"specifications" yaml:"specifications" validate:"dive"`
	InStock        bool            `json:"in_stock" yaml:"in_stock"`
	StockCount     int             `json:"stock_count" yaml:"stock_count" validate:"gte=0"`
	Reviews        []Review        `json:"reviews" yaml:"reviews" validate:"dive"`
}

// ClampQuantity bounds a requested quantity to [1, StockCount].
func (d ProductDetail) ClampQuantity(n int) int {
	if n > d.StockCount {
		n = d.StockCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// CartProduct returns the product as it goes into a cart line: the first
// gallery image stands in for the card image.
func (d ProductDetail) CartProduct() Product {
	p := d.Product
	if len(d.Images) > 0 {
		p.Image = d.Images[0]
	}
	return p
}

// Category is a browsable product category.
type Category struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	Name         string `json:"name" yaml:"name" validate:"required"`
	Slug         string `json:"slug" yaml:"-"`
	Description  string `json:"description" yaml:"description"`
	Image        string `json:"image" yaml:"image" validate:"omitempty,url"`
	ProductCount int    `json:"product_count" yaml:"product_count" validate:"gte=0"`
	Trending     bool   `json:"trending,omitempty" yaml:"trending"`
}

// TeamMember is a person featured on the about page.
type TeamMember struct {
	Name        string `yaml:"name"`
	Role        string `yaml:"role"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

// Value is one of the company values on the about page.
type Value struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// Stat is a headline figure such as "500K+ Happy Customers".
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// ContactMethod is a way to reach the store.
type ContactMethod struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Contact     string `yaml:"contact"`
	Icon        string `yaml:"icon"`
}

// FAQ is a frequently asked question with its answer.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// OpeningHours is one row of the business hours table.
type OpeningHours struct {
	Days  string `yaml:"days"`
	Hours string `yaml:"hours"`
}

// Notice is a short toast shown to the shopper after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
