package validator

// Validator is the validation entry point injected into services and
// handlers. It wraps the business validator so custom rules register once.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// ValidateStruct validates any DTO against its struct tags.
func (v *Validator) ValidateStruct(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}

// GetBusinessValidator exposes the rule-specific validations.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
