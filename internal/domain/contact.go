package domain

// Contact is a notification target in the emergency roster.
type Contact struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Phone string `json:"phone" yaml:"phone"`
}

// ContactInput is the body accepted when adding a contact.
type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// IDPolicy selects how the registry assigns contact ids.
type IDPolicy string

const (
	// IDPolicyLength assigns len(registry)+1. Ids can repeat after a delete.
	IDPolicyLength IDPolicy = "length"
	// IDPolicySequence assigns ids from a counter that never goes backwards.
	IDPolicySequence IDPolicy = "sequence"
)
