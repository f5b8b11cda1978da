package enums

import "fmt"

// WorkflowKind identifies the conversational workflow a session is running.
type WorkflowKind string

const (
	WorkflowKindOrderCreate   WorkflowKind = "order-create"
	WorkflowKindReceiptCreate WorkflowKind = "receipt-create"
	WorkflowKindOrderEdit     WorkflowKind = "order-edit"
)

var validWorkflowKinds = []WorkflowKind{
	WorkflowKindOrderCreate,
	WorkflowKindReceiptCreate,
	WorkflowKindOrderEdit,
}

// IsValid reports whether the value matches the canonical workflow enum.
func (w WorkflowKind) IsValid() bool {
	for _, candidate := range validWorkflowKinds {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorkflowKind converts the raw string to WorkflowKind.
func ParseWorkflowKind(value string) (WorkflowKind, error) {
	for _, candidate := range validWorkflowKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workflow kind %q", value)
}
