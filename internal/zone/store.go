package zone

import (
	"fmt"
	"sort"
)

// DeleteGuard is consulted before a layout is removed. Returning an
// error (typically ErrLayoutInUse) aborts the deletion.
type DeleteGuard func(layoutID string) error

// OnDeleteFunc is called after a layout has been removed, so that
// context bindings referencing the id can be retargeted.
type OnDeleteFunc func(layoutID string)

// Store is the in-memory catalog of layouts. It owns layouts and their
// zones by value; everything else references them by identifier only.
// The store performs no locking of its own — all mutation goes through
// the engine's serialized entry points.
type Store struct {
	layouts map[string]Layout
	nextID  int

	guard    DeleteGuard
	onDelete []OnDeleteFunc

	graphs map[string]*Graph
}

// NewStore creates an empty layout store.
func NewStore() *Store {
	return &Store{
		layouts: make(map[string]Layout),
		graphs:  make(map[string]*Graph),
		nextID:  1,
	}
}

// SetDeleteGuard installs the in-use check consulted by Delete.
func (s *Store) SetDeleteGuard(guard DeleteGuard) {
	s.guard = guard
}

// OnDelete registers a callback invoked after a successful deletion.
func (s *Store) OnDelete(fn OnDeleteFunc) {
	s.onDelete = append(s.onDelete, fn)
}

// Create validates and stores a new layout. A layout with an empty id
// gets a generated one. Names need not be unique; ids must be.
func (s *Store) Create(l Layout) (Layout, error) {
	if l.ID == "" {
		l.ID = s.generateID()
	}
	if _, exists := s.layouts[l.ID]; exists {
		return Layout{}, fmt.Errorf("layout %q already exists", l.ID)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}

	s.layouts[l.ID] = l.Clone()
	return l, nil
}

// Update replaces an existing layout after validation. The adjacency
// graph cache for the layout is invalidated.
func (s *Store) Update(l Layout) error {
	if _, exists := s.layouts[l.ID]; !exists {
		return fmt.Errorf("layout %q: %w", l.ID, ErrNotFound)
	}
	if err := l.Validate(); err != nil {
		return err
	}

	s.layouts[l.ID] = l.Clone()
	delete(s.graphs, l.ID)
	return nil
}

// UpdateZones replaces only the zone set of an existing layout.
func (s *Store) UpdateZones(layoutID string, zones []Zone) error {
	l, exists := s.layouts[layoutID]
	if !exists {
		return fmt.Errorf("layout %q: %w", layoutID, ErrNotFound)
	}
	l.Zones = zones
	return s.Update(l)
}

// Delete removes a layout. The delete guard may refuse (a screen's last
// remaining layout fails with ErrLayoutInUse); on success, registered
// OnDelete hooks retarget any bindings that pointed at the id.
func (s *Store) Delete(layoutID string) error {
	if _, exists := s.layouts[layoutID]; !exists {
		return fmt.Errorf("layout %q: %w", layoutID, ErrNotFound)
	}
	if s.guard != nil {
		if err := s.guard(layoutID); err != nil {
			return err
		}
	}

	delete(s.layouts, layoutID)
	delete(s.graphs, layoutID)
	for _, fn := range s.onDelete {
		fn(layoutID)
	}
	return nil
}

// Get returns a copy of the layout with the given id.
func (s *Store) Get(layoutID string) (Layout, error) {
	l, exists := s.layouts[layoutID]
	if !exists {
		return Layout{}, fmt.Errorf("layout %q: %w", layoutID, ErrNotFound)
	}
	return l.Clone(), nil
}

// Has reports whether a layout with the given id exists.
func (s *Store) Has(layoutID string) bool {
	_, exists := s.layouts[layoutID]
	return exists
}

// List returns copies of all layouts sorted by id.
func (s *Store) List() []Layout {
	out := make([]Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stored layouts.
func (s *Store) Len() int {
	return len(s.layouts)
}

// Graph returns the adjacency graph for a layout, building it lazily on
// first access after a zone-set mutation.
func (s *Store) Graph(layoutID string) (*Graph, error) {
	if g, ok := s.graphs[layoutID]; ok {
		return g, nil
	}
	l, exists := s.layouts[layoutID]
	if !exists {
		return nil, fmt.Errorf("layout %q: %w", layoutID, ErrNotFound)
	}

	g := BuildGraph(&l)
	s.graphs[layoutID] = g
	return g, nil
}

func (s *Store) generateID() string {
	for {
		id := fmt.Sprintf("layout-%d", s.nextID)
		s.nextID++
		if _, exists := s.layouts[id]; !exists {
			return id
		}
	}
}
