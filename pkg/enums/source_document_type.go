package enums

import "fmt"

// SourceDocumentType identifies the document a stock movement originated from.
type SourceDocumentType string

const (
	SourceDocumentTypeDelivery   SourceDocumentType = "delivery"
	SourceDocumentTypeOrder      SourceDocumentType = "order"
	SourceDocumentTypeAdjustment SourceDocumentType = "adjustment"
)

var validSourceDocumentTypes = []SourceDocumentType{
	SourceDocumentTypeDelivery,
	SourceDocumentTypeOrder,
	SourceDocumentTypeAdjustment,
}

// IsValid reports whether the value matches the canonical source document enum.
func (s SourceDocumentType) IsValid() bool {
	for _, candidate := range validSourceDocumentTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourceDocumentType converts the raw string to SourceDocumentType.
func ParseSourceDocumentType(value string) (SourceDocumentType, error) {
	for _, candidate := range validSourceDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source document type %q", value)
}
