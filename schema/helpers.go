package schema

import (
	"strconv"
)

// Ptr returns a pointer to v. Measures fields use it for computed values.
func Ptr[T any](v T) *T {
	return &v
}

// FormatOptionalInt renders a nullable integer for text and CSV output.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// FormatOptionalFloat renders a nullable float with the given precision.
func FormatOptionalFloat(v *float64, precision int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// FormatOptionalString renders a nullable string.
func FormatOptionalString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
