package enums

import "fmt"

// StoreCode identifies one of the two physical stores. The declaration order
// of StoreCodes is canonical: nearest-store ties resolve to the first entry.
type StoreCode string

const (
	StoreCocody   StoreCode = "COCODY"
	StoreKoumassi StoreCode = "KOUMASSI"
)

var validStoreCodes = []StoreCode{
	StoreCocody,
	StoreKoumassi,
}

// StoreCodes returns the fixed store set in canonical order.
func StoreCodes() []StoreCode {
	out := make([]StoreCode, len(validStoreCodes))
	copy(out, validStoreCodes)
	return out
}

// String implements fmt.Stringer.
func (s StoreCode) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreCode.
func (s StoreCode) IsValid() bool {
	for _, candidate := range validStoreCodes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreCode converts raw input into a StoreCode.
func ParseStoreCode(value string) (StoreCode, error) {
	for _, candidate := range validStoreCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store code %q", value)
}
