package types

// OrderItem is the immutable snapshot of one cart line captured at submission
// time. Later cart mutation never alters a stored order.
type OrderItem struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	NameAR           string `json:"name_ar,omitempty"`
	UnitPriceHalalas int64  `json:"unit_price_halalas"`
	Quantity         int    `json:"quantity"`
	LineTotalHalalas int64  `json:"line_total_halalas"`
	ImageURL         string `json:"image_url,omitempty"`
}

// OrderItems is persisted as a jsonb column on orders.
type OrderItems []OrderItem
