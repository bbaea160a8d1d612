package enums

import "fmt"

// ProductOrderBy names the sortable catalog columns.
type ProductOrderBy string

const (
	ProductOrderByName      ProductOrderBy = "name"
	ProductOrderByPrice     ProductOrderBy = "price"
	ProductOrderByCreatedAt ProductOrderBy = "created_at"
)

var validProductOrderBys = []ProductOrderBy{
	ProductOrderByName,
	ProductOrderByPrice,
	ProductOrderByCreatedAt,
}

// String implements fmt.Stringer.
func (o ProductOrderBy) String() string {
	return string(o)
}

// IsValid reports whether the value is a known ProductOrderBy.
func (o ProductOrderBy) IsValid() bool {
	for _, candidate := range validProductOrderBys {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseProductOrderBy converts raw input into a ProductOrderBy.
func ParseProductOrderBy(value string) (ProductOrderBy, error) {
	for _, candidate := range validProductOrderBys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order_by %q", value)
}

// SortDirection is the order direction for catalog queries.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid reports whether the value is a known SortDirection.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// ParseSortDirection converts raw input into a SortDirection.
func ParseSortDirection(value string) (SortDirection, error) {
	switch SortDirection(value) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid direction %q", value)
}
