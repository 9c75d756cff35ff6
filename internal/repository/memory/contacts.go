package memory

import (
	"sync"

	"github.com/healthsurge/backend/internal/domain"
)

// ContactRepository implements domain.ContactRepository with an in-memory slice
type ContactRepository struct {
	mu       sync.RWMutex
	contacts []domain.Contact
	policy   domain.IDPolicy
	lastID   int
}

// NewContactRepository creates a roster pre-populated with seed.
func NewContactRepository(policy domain.IDPolicy, seed []domain.Contact) *ContactRepository {
	r := &ContactRepository{
		contacts: make([]domain.Contact, 0, len(seed)),
		policy:   policy,
	}
	for _, c := range seed {
		r.contacts = append(r.contacts, c)
		if c.ID > r.lastID {
			r.lastID = c.ID
		}
	}
	return r
}

// List returns a copy of the roster in insertion order
func (r *ContactRepository) List() []domain.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Contact, len(r.contacts))
	copy(out, r.contacts)
	return out
}

// Add appends a contact. Under IDPolicyLength the id is len+1 and may repeat
// an id that is still in the roster once something has been deleted.
func (r *ContactRepository) Add(input domain.ContactInput) domain.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int
	switch r.policy {
	case domain.IDPolicySequence:
		id = r.lastID + 1
	default:
		id = len(r.contacts) + 1
	}
	if id > r.lastID {
		r.lastID = id
	}

	c := domain.Contact{
		ID:    id,
		Name:  input.Name,
		Role:  input.Role,
		Phone: input.Phone,
	}
	r.contacts = append(r.contacts, c)
	return c
}

// Delete removes the first contact matching id
func (r *ContactRepository) Delete(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.contacts {
		if c.ID == id {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return true
		}
	}
	return false
}
