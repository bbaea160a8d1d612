package cart

import (
	"github.com/google/uuid"

	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
)

// AddStatus reports how an add request ended.
type AddStatus string

const (
	// AddStatusAdded means the line was inserted or merged.
	AddStatusAdded AddStatus = "added"
	// AddStatusAborted means a declined store switch left the cart unchanged.
	AddStatusAborted AddStatus = "aborted"
)

// AddItemInput carries an add request.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Store     enums.StoreCode
}

// AddResult is the answer to an add request. An aborted add is a result, not
// an error; the cart it carries is the unchanged one.
type AddResult struct {
	Status AddStatus `json:"status"`
	Cart   Summary   `json:"cart"`
}

// FeeContext supplies the checkout fees folded into cart totals.
type FeeContext struct {
	DeliveryFeeCFA    int `json:"delivery_fee_cfa"`
	PreparationFeeCFA int `json:"preparation_fee_cfa"`
}

// Summary is the derived view of a cart. Totals are recomputed on every read;
// nothing here is stored.
type Summary struct {
	StoreCode         *enums.StoreCode  `json:"store_code,omitempty"`
	Items             []models.CartItem `json:"items"`
	TotalItems        int               `json:"total_items"`
	SubtotalCFA       int               `json:"subtotal_cfa"`
	DeliveryFeeCFA    int               `json:"delivery_fee_cfa"`
	PreparationFeeCFA int               `json:"preparation_fee_cfa"`
	TotalCFA          int               `json:"total_cfa"`
}

// summarize derives the cart view. Fees apply only when the cart holds items;
// an empty cart totals zero.
func summarize(record *models.CartRecord, fees FeeContext) Summary {
	summary := Summary{Items: []models.CartItem{}}
	if record == nil || len(record.Items) == 0 {
		if record != nil {
			summary.StoreCode = record.StoreCode
		}
		return summary
	}

	summary.StoreCode = record.StoreCode
	summary.Items = record.Items
	for _, item := range record.Items {
		summary.TotalItems += item.Quantity
		summary.SubtotalCFA += item.LineSubtotalCFA()
	}
	summary.DeliveryFeeCFA = fees.DeliveryFeeCFA
	summary.PreparationFeeCFA = fees.PreparationFeeCFA
	summary.TotalCFA = summary.SubtotalCFA + fees.DeliveryFeeCFA + fees.PreparationFeeCFA
	return summary
}
