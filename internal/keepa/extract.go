package keepa

// csvNewPrice is the index of the new-condition price series in Product.CSV.
const csvNewPrice = 1

// NoPrice is what Keepa's "no offer" marker (-1) becomes after conversion.
const NoPrice = -0.01

// CurrentNewPrice returns the most recent new-condition price in major
// currency units. It returns ErrNoProducts or ErrNoPriceHistory instead of
// a price when the response does not carry one.
func CurrentNewPrice(resp *ProductResponse) (float64, error) {
	if resp == nil || len(resp.Products) == 0 {
		return 0, ErrNoProducts
	}

	product := resp.Products[0]
	if len(product.CSV) <= csvNewPrice {
		return 0, ErrNoPriceHistory
	}

	series := product.CSV[csvNewPrice]
	if len(series) == 0 {
		return 0, ErrNoPriceHistory
	}

	return float64(series[len(series)-1]) / 100, nil
}

// SalesRankCurrent reads products[0].salesRank.current. It never invents
// a value: a missing field yields nil.
func SalesRankCurrent(resp *ProductResponse) *int {
	if resp == nil || len(resp.Products) == 0 {
		return nil
	}

	rank := resp.Products[0].SalesRank
	if rank == nil || rank.Current == nil {
		return nil
	}

	value := *rank.Current
	return &value
}

// ValidPrice rejects the NoPrice marker and anything not above zero.
func ValidPrice(price float64) bool {
	return price != NoPrice && price > 0
}
