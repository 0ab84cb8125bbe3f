package validator

// Validator validates a struct using its `validate` tags.
//
// On failure it returns an error whose Values method maps snake_case field
// names to human readable messages.
type Validator interface {
	Validate(data any) error
}
