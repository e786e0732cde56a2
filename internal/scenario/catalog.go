// Package scenario holds the named datasets the explainer decomposes: the
// built-in demos and any scenario files loaded at startup.
package scenario

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lmdi-explainer/lmdi-go/internal/domain"
)

// ErrNotFound is returned when no scenario has the requested name.
var ErrNotFound = errors.New("scenario not found")

// Source looks scenarios up by name.
type Source interface {
	List() []domain.ScenarioSummary
	Get(name string) (domain.Scenario, error)
}

// Catalog is an in-memory Source. Scenarios keep their insertion order.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]domain.Scenario
	order  []string
}

// NewCatalog validates and adds the given scenarios.
func NewCatalog(scenarios ...domain.Scenario) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]domain.Scenario)}
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add validates s and stores it, replacing any scenario with the same name.
func (c *Catalog) Add(s domain.Scenario) error {
	if err := domain.ValidateScenario(s); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[s.Name]; !exists {
		c.order = append(c.order, s.Name)
	}
	c.byName[s.Name] = s
	return nil
}

// List returns summaries in insertion order.
func (c *Catalog) List() []domain.ScenarioSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ScenarioSummary, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name].Summary())
	}
	return out
}

// Get returns the named scenario or ErrNotFound.
func (c *Catalog) Get(name string) (domain.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byName[name]
	if !ok {
		return domain.Scenario{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return s, nil
}

// Builtin returns a catalog holding the demo scenarios.
func Builtin() *Catalog {
	c, err := NewCatalog(Revenue(), UsersPrice())
	if err != nil {
		panic(fmt.Sprintf("builtin scenarios invalid: %v", err))
	}
	return c
}

// Compile-time check.
var _ Source = (*Catalog)(nil)
