package model

// ProductQuery is the immutable input to lifecycle research. ProductID is
// the only required field; the rest are hints from the inventory record.
type ProductQuery struct {
	ProductID    string `json:"productId"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Category     string `json:"category,omitempty"`
	Type         string `json:"type,omitempty"`
	Description  string `json:"description,omitempty"`
}
