package rotation

import "fmt"

// Kind classifies why a rotation failed.
type Kind int

const (
	KindPickerUnavailable Kind = iota + 1
	KindEnrichmentUnavailable
	KindEnrichmentMalformed
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindPickerUnavailable:
		return "PickerUnavailable"
	case KindEnrichmentUnavailable:
		return "EnrichmentUnavailable"
	case KindEnrichmentMalformed:
		return "EnrichmentMalformed"
	case KindStorage:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// RotationError is the single failure value a rotation reports.
type RotationError struct {
	Kind Kind
	Word string // candidate word, empty when picking failed
	Err  error
}

func (e *RotationError) Error() string {
	return fmt.Sprintf("rotation failed (%s): %v", e.Kind, e.Err)
}

func (e *RotationError) Unwrap() error {
	return e.Err
}

// Message is a short explanation suitable for showing to the user.
func (e *RotationError) Message() string {
	switch e.Kind {
	case KindPickerUnavailable:
		return "Could not get a new word. Check your connection and retry."
	case KindEnrichmentUnavailable:
		return fmt.Sprintf("Could not look up %q. The dictionary service is unavailable.", e.Word)
	case KindEnrichmentMalformed:
		return fmt.Sprintf("The dictionary service returned an unreadable answer for %q.", e.Word)
	case KindStorage:
		return "Could not save the new word."
	default:
		return e.Error()
	}
}
