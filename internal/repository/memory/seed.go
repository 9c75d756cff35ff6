package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healthsurge/backend/internal/domain"
)

// DefaultContacts is the demo roster used when no seed file is configured.
func DefaultContacts() []domain.Contact {
	return []domain.Contact{
		{ID: 1, Name: "Sarah Jenkins", Role: "Head Nurse", Phone: "+919876543210"},
		{ID: 2, Name: "Dr. Rajesh Koothrappali", Role: "Doctor", Phone: "+919876543212"},
		{ID: 3, Name: "City General Ambulance", Role: "Ambulance", Phone: "+919876543211"},
	}
}

type seedFile struct {
	Contacts []domain.Contact `yaml:"contacts"`
}

// LoadSeed reads a YAML roster of the form
//
//	contacts:
//	  - {id: 1, name: Sarah Jenkins, role: Head Nurse, phone: "+919876543210"}
//
// An empty path returns DefaultContacts. Contacts without an id are numbered
// by position.
func LoadSeed(path string) ([]domain.Contact, error) {
	if path == "" {
		return DefaultContacts(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to read contacts file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("memory: failed to parse contacts file: %w", err)
	}

	for i := range f.Contacts {
		if f.Contacts[i].ID == 0 {
			f.Contacts[i].ID = i + 1
		}
		if f.Contacts[i].Name == "" || f.Contacts[i].Phone == "" {
			return nil, fmt.Errorf("memory: contact %d in %s: name and phone are required", i+1, path)
		}
	}
	return f.Contacts, nil
}
