package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownImportType is returned when no profile is registered for a type.
var ErrUnknownImportType = errors.New("unknown import type")

// Registry holds the import profiles of one session. It is built once at
// startup and passed explicitly; there is no package-level registry.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// Register adds a profile. Returns an error if the import type is already
// registered or the profile is malformed.
func (r *Registry) Register(p Profile) error {
	if p.ImportType == "" {
		return errors.New("profile has no import type")
	}
	for _, slot := range p.ParentSlots {
		if slot.IDColumn == "" {
			return fmt.Errorf("profile %s: parent slot %q has no id column", p.ImportType, slot.Label)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.ImportType]; exists {
		return fmt.Errorf("import type already registered: %s", p.ImportType)
	}
	r.profiles[p.ImportType] = p
	return nil
}

// MustRegister is Register that panics on error, for static profiles.
func (r *Registry) MustRegister(p Profile) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Get returns the profile for importType.
func (r *Registry) Get(importType string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[importType]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownImportType, importType)
	}
	return p, nil
}

// All returns all profiles sorted by import type.
func (r *Registry) All() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ImportType < result[j].ImportType
	})
	return result
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
