package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList and SpecMap are stored as JSON columns.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

type SpecMap map[string]string

func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *SpecMap) Scan(src any) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// Product is a catalog entry: one brick or tile line as shown on the site.
type Product struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:255" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	Price          float64    `json:"price"`
	Category       string     `gorm:"size:100;index" json:"category"`
	SKU            string     `gorm:"size:100;uniqueIndex" json:"sku"`
	Stock          int        `json:"stock"`
	ImageURL       string     `gorm:"size:512" json:"imageUrl"`
	Images         StringList `gorm:"type:jsonb" json:"images"`
	Location       string     `gorm:"size:255" json:"location"`
	Year           int        `json:"year"`
	Specifications SpecMap    `gorm:"type:jsonb" json:"specifications"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// SearchParams narrows and pages a product listing. Zero values mean
// "no constraint"; price bounds use pointers so 0 remains expressible.
type SearchParams struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Normalize clamps paging to sane bounds and whitelists the sort column.
func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	switch p.SortBy {
	case "name", "price":
	default:
		p.SortBy = "created_at"
	}
}

func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ProductPage is one page of a listing plus the total match count.
type ProductPage struct {
	Products []Product
	Total    int64
}
