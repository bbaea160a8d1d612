package products

import (
	"github.com/lemarcheci/storefront-backend/pkg/db/models"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	"github.com/lemarcheci/storefront-backend/pkg/pagination"
)

// ListInput carries catalog filters. Nil pointers mean "no filter".
type ListInput struct {
	CategorySlug    *string
	PriceMinCFA     *int
	PriceMaxCFA     *int
	Tags            []string
	Featured        *bool
	Specialty       *bool
	Search          string
	IncludeInactive bool

	OrderBy   enums.ProductOrderBy
	Direction enums.SortDirection
	Page      pagination.Params
}

// ListResult is one catalog page.
type ListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
}
