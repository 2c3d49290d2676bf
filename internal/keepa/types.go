package keepa

// ProductResponse is the body of GET /product.
type ProductResponse struct {
	Products   []Product `json:"products"`
	TokensLeft int       `json:"tokensLeft"`
	RefillIn   int       `json:"refillIn"`
}

// Product is the subset of a Keepa product object the pipeline reads.
// CSV holds one flattened [time, value, time, value, ...] series per price
// type; series Keepa has no data for arrive as null.
type Product struct {
	ASIN      string     `json:"asin"`
	Title     string     `json:"title"`
	CSV       [][]int64  `json:"csv"`
	SalesRank *SalesRank `json:"salesRank,omitempty"`
}

type SalesRank struct {
	Current *int `json:"current"`
}

// FinderSelection is the product finder query, sent JSON encoded.
type FinderSelection struct {
	Title   string `json:"title"`
	PerPage int    `json:"perPage"`
	Page    int    `json:"page"`
}

// FinderResponse is the body of GET /query.
type FinderResponse struct {
	ASINList     []string `json:"asinList"`
	TotalResults int      `json:"totalResults"`
	TokensLeft   int      `json:"tokensLeft"`
}
