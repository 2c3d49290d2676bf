package models

import (
	"fmt"
	"math"
)

// Marketplace maps a short market code to the Keepa domain id.
type Marketplace struct {
	Code   string
	Domain int
	Host   string
}

var (
	UK = Marketplace{Code: "UK", Domain: 2, Host: "www.amazon.co.uk"}
	DE = Marketplace{Code: "DE", Domain: 3, Host: "www.amazon.de"}
	FR = Marketplace{Code: "FR", Domain: 4, Host: "www.amazon.fr"}
	IT = Marketplace{Code: "IT", Domain: 8, Host: "www.amazon.it"}
	ES = Marketplace{Code: "ES", Domain: 9, Host: "www.amazon.es"}
)

// EuropeanMarketplaces returns the foreign marketplaces in evaluation order.
func EuropeanMarketplaces() []Marketplace {
	return []Marketplace{DE, FR, IT, ES}
}

func (m Marketplace) PurchaseURL(asin string) string {
	return fmt.Sprintf("https://%s/dp/%s", m.Host, asin)
}

func (m Marketplace) KeepaURL(asin string) string {
	return fmt.Sprintf("https://keepa.com/#!product/%d-%s", m.Domain, asin)
}

// ProductRecord is one selected product as written to the results file.
type ProductRecord struct {
	ASIN          string             `json:"ASIN"`
	BuyBox        float64            `json:"Buy box"`
	SalePrice     float64            `json:"Sale Price"`
	ROI           float64            `json:"ROI"`
	SalesPerMonth *int               `json:"Sales Per Month"`
	PurchaseLink  string             `json:"Purchase Link"`
	KeepaLink     string             `json:"Keepa Link"`
	Market        map[string]float64 `json:"Market,omitempty"`
}

// NewProductRecord derives sale price and ROI from the home price.
// salesRank is stored as given; nil stays nil.
func NewProductRecord(asin string, home Marketplace, homePrice, markup float64, salesRank *int) *ProductRecord {
	salePrice := homePrice * markup
	roi := 0.0
	if homePrice != 0 {
		roi = (salePrice - homePrice) / homePrice * 100
	}

	return &ProductRecord{
		ASIN:          asin,
		BuyBox:        homePrice,
		SalePrice:     salePrice,
		ROI:           roi,
		SalesPerMonth: salesRank,
		PurchaseLink:  home.PurchaseURL(asin),
		KeepaLink:     home.KeepaURL(asin),
	}
}

func (r *ProductRecord) AddMarket(code string, price float64) {
	if r.Market == nil {
		r.Market = make(map[string]float64)
	}
	r.Market[code] = price
}

// Qualified reports whether at least one foreign marketplace cleared the spread.
func (r *ProductRecord) Qualified() bool {
	return len(r.Market) > 0
}

// Validate lists the reasons a record cannot be written to the results file.
func (r *ProductRecord) Validate() []string {
	var errors []string

	if r.ASIN == "" {
		errors = append(errors, "ASIN is required")
	}

	if r.BuyBox <= 0 || math.IsNaN(r.BuyBox) {
		errors = append(errors, "Invalid buy box price")
	}

	if math.IsNaN(r.SalePrice) || math.IsInf(r.SalePrice, 0) || math.IsNaN(r.ROI) || math.IsInf(r.ROI, 0) {
		errors = append(errors, "Invalid sale price")
	}

	if !r.Qualified() {
		errors = append(errors, "No qualifying marketplace")
	}

	return errors
}
