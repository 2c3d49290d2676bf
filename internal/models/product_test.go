package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductRecord(t *testing.T) {
	rank := 1234
	record := NewProductRecord("B01IF1HJAO", UK, 100, 1.2, &rank)

	assert.Equal(t, "B01IF1HJAO", record.ASIN)
	assert.Equal(t, 100.0, record.BuyBox)
	assert.InDelta(t, 120.0, record.SalePrice, 1e-9)
	assert.InDelta(t, 20.0, record.ROI, 1e-9)
	require.NotNil(t, record.SalesPerMonth)
	assert.Equal(t, 1234, *record.SalesPerMonth)
	assert.Equal(t, "https://www.amazon.co.uk/dp/B01IF1HJAO", record.PurchaseLink)
	assert.Equal(t, "https://keepa.com/#!product/2-B01IF1HJAO", record.KeepaLink)
	assert.Nil(t, record.Market)
	assert.False(t, record.Qualified())
}

func TestNewProductRecord_NoSalesRank(t *testing.T) {
	record := NewProductRecord("B0020K966M", UK, 50, 1.2, nil)
	assert.Nil(t, record.SalesPerMonth)
}

func TestProductRecord_AddMarket(t *testing.T) {
	record := NewProductRecord("B0020K966M", UK, 120, 1.2, nil)

	record.AddMarket("DE", 100)
	record.AddMarket("FR", 101.5)

	assert.True(t, record.Qualified())
	assert.Equal(t, map[string]float64{"DE": 100, "FR": 101.5}, record.Market)
	assert.Empty(t, record.Validate())
}

func TestProductRecord_Validate(t *testing.T) {
	record := &ProductRecord{}
	errs := record.Validate()

	assert.Contains(t, errs, "ASIN is required")
	assert.Contains(t, errs, "Invalid buy box price")
	assert.Contains(t, errs, "No qualifying marketplace")
}

func TestProductRecord_ValidateNonFiniteSalePrice(t *testing.T) {
	record := NewProductRecord("B0020K966M", UK, 120, math.NaN(), nil)
	record.AddMarket("DE", 100)

	assert.Equal(t, []string{"Invalid sale price"}, record.Validate())
}

func TestMarketplaceDomains(t *testing.T) {
	tests := []struct {
		market Marketplace
		domain int
	}{
		{UK, 2},
		{DE, 3},
		{FR, 4},
		{IT, 8},
		{ES, 9},
	}

	for _, tt := range tests {
		t.Run(tt.market.Code, func(t *testing.T) {
			assert.Equal(t, tt.domain, tt.market.Domain)
		})
	}

	codes := []string{}
	for _, m := range EuropeanMarketplaces() {
		codes = append(codes, m.Code)
	}
	assert.Equal(t, []string{"DE", "FR", "IT", "ES"}, codes)
}
