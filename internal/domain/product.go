package domain

import "github.com/shopspring/decimal"

// RawProduct carries the cell values of one catalog row, keyed by
// internal field instead of column position. Values are raw sheet text;
// resolution parses them defensively.
type RawProduct struct {
	Node       string
	Ref        string
	SKU        string
	Category   string
	Name       string
	ParentName string

	Variation  string
	Variation2 string
	Variation3 string
	Variation4 string

	Price          string
	SalePrice      string
	OnSale         string
	UnitsPerCase   string
	CommissionRate string
	SaleCommission string

	Description     string
	Image           string
	BackgroundColor string
	TextColor       string

	Brand         string
	ZoneVariation string
	PDFRangeName  string

	Inventory string
	Status    string
	OrderQty  string
}

// Product is a fully resolved catalog entry. Children inherit unset
// attributes from the nearest preceding parent row; parent rows carry
// the variation columns as attribute labels rather than values.
type Product struct {
	ID       int  `json:"id"`
	GroupID  int  `json:"groupId"`
	IsParent bool `json:"isParent"`

	SKU      string `json:"sku"`
	Ref      string `json:"ref"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Brand    string `json:"brand"`

	// Inventory cell "0" disables the product. Blank or anything else
	// leaves it available.
	IsAvailable bool `json:"isAvailable"`

	Variation  string `json:"variation"`
	Variation2 string `json:"variation2"`
	Variation3 string `json:"variation3"`
	Variation4 string `json:"variation4"`

	HeaderVariation  string `json:"headerVariation"`
	HeaderVariation2 string `json:"headerVariation2"`
	HeaderVariation3 string `json:"headerVariation3"`
	HeaderVariation4 string `json:"headerVariation4"`

	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	OnSale    bool            `json:"onSale"`

	HasCase      bool `json:"hasCase"`
	UnitsPerCase int  `json:"unitsPerCase"`

	CommissionRate decimal.Decimal `json:"commissionRate"`
	SaleCommission decimal.Decimal `json:"saleCommission"`

	Description string `json:"description"`
	Image       string `json:"image"`

	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`

	GroupName      string `json:"groupName"`
	GroupColor     string `json:"groupColor"`
	GroupTextColor string `json:"groupTextColor"`

	PDFRangeName  string `json:"pdfRangeName"`
	ZoneVariation string `json:"zoneVariation"`
}
