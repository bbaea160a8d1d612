package enums

import "fmt"

// LocationErrorCode mirrors the browser geolocation failure modes clients report.
type LocationErrorCode string

const (
	LocationErrorPermissionDenied LocationErrorCode = "PERMISSION_DENIED"
	LocationErrorTimeout          LocationErrorCode = "TIMEOUT"
	LocationErrorUnavailable      LocationErrorCode = "UNAVAILABLE"
)

var validLocationErrorCodes = []LocationErrorCode{
	LocationErrorPermissionDenied,
	LocationErrorTimeout,
	LocationErrorUnavailable,
}

// String implements fmt.Stringer.
func (c LocationErrorCode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known LocationErrorCode.
func (c LocationErrorCode) IsValid() bool {
	for _, candidate := range validLocationErrorCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseLocationErrorCode converts raw input into a LocationErrorCode.
func ParseLocationErrorCode(value string) (LocationErrorCode, error) {
	for _, candidate := range validLocationErrorCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location error code %q", value)
}
