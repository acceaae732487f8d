// Package resolver maps a runtime (screen, desktop, activity) context to
// the layout that should be active there.
package resolver

import "sort"

// Wildcard matches any desktop or activity in a binding.
const Wildcard = ""

// Binding associates a context with a layout. Desktop and Activity may
// be left as Wildcard.
type Binding struct {
	Screen   string `yaml:"screen" json:"screen"`
	Desktop  string `yaml:"desktop,omitempty" json:"desktop,omitempty"`
	Activity string `yaml:"activity,omitempty" json:"activity,omitempty"`
	LayoutID string `yaml:"layout" json:"layout"`
}

// specificity orders candidate bindings: exact desktop+activity beats
// desktop-only beats activity-only beats a screen-wide binding.
func (b Binding) specificity() int {
	switch {
	case b.Desktop != Wildcard && b.Activity != Wildcard:
		return 3
	case b.Desktop != Wildcard:
		return 2
	case b.Activity != Wildcard:
		return 1
	default:
		return 0
	}
}

// Resolver holds context bindings, per-screen defaults and the global
// fallback layout. Resolution never fails: an unresolvable context
// yields the global fallback, which is guaranteed to exist.
type Resolver struct {
	bindings       []Binding
	screenDefaults map[string]string
	fallback       string
}

// New creates a resolver with the given global fallback layout id.
func New(fallbackLayoutID string) *Resolver {
	return &Resolver{
		screenDefaults: make(map[string]string),
		fallback:       fallbackLayoutID,
	}
}

// Bind adds or replaces a binding. A binding with the same context tuple
// as an existing one replaces it.
func (r *Resolver) Bind(b Binding) {
	for i, existing := range r.bindings {
		if existing.Screen == b.Screen && existing.Desktop == b.Desktop && existing.Activity == b.Activity {
			r.bindings[i] = b
			return
		}
	}
	r.bindings = append(r.bindings, b)
}

// Unbind removes the binding with the exact context tuple, if present.
func (r *Resolver) Unbind(screen, desktop, activity string) {
	for i, b := range r.bindings {
		if b.Screen == screen && b.Desktop == desktop && b.Activity == activity {
			r.bindings = append(r.bindings[:i], r.bindings[i+1:]...)
			return
		}
	}
}

// SetScreenDefault sets the default layout for a screen.
func (r *Resolver) SetScreenDefault(screen, layoutID string) {
	r.screenDefaults[screen] = layoutID
}

// ScreenDefault returns the default layout for a screen, falling back
// to the global fallback.
func (r *Resolver) ScreenDefault(screen string) string {
	if id, ok := r.screenDefaults[screen]; ok && id != "" {
		return id
	}
	return r.fallback
}

// SetFallback replaces the global fallback layout id.
func (r *Resolver) SetFallback(layoutID string) {
	r.fallback = layoutID
}

// Fallback returns the global fallback layout id.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Resolve returns the layout id for a runtime context. Among matching
// bindings the most specific wins; with none, the screen default, then
// the global fallback.
func (r *Resolver) Resolve(screen, desktop, activity string) string {
	best := -1
	var bestLayout string
	for _, b := range r.bindings {
		if b.Screen != screen {
			continue
		}
		if b.Desktop != Wildcard && b.Desktop != desktop {
			continue
		}
		if b.Activity != Wildcard && b.Activity != activity {
			continue
		}
		if s := b.specificity(); s > best {
			best = s
			bestLayout = b.LayoutID
		}
	}
	if best >= 0 {
		return bestLayout
	}
	return r.ScreenDefault(screen)
}

// Bindings returns a copy of all bindings, most specific first, for
// inspection and persistence.
func (r *Resolver) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].specificity() > out[j].specificity()
	})
	return out
}

// Retarget rewrites every reference to a deleted layout so nothing
// dangles: affected bindings move to the owning screen's default, screen
// defaults move to the global fallback. Registered as an OnDelete hook
// on the layout store.
func (r *Resolver) Retarget(deletedLayoutID string) {
	for screen, id := range r.screenDefaults {
		if id == deletedLayoutID {
			delete(r.screenDefaults, screen)
		}
	}
	for i, b := range r.bindings {
		if b.LayoutID == deletedLayoutID {
			r.bindings[i].LayoutID = r.ScreenDefault(b.Screen)
		}
	}
}

// RefersTo reports whether any binding or screen default references the
// layoutid. The global fallback does not count: it is replaced, not
// retargeted.
func (r *Resolver) RefersTo(layoutID string) bool {
	for _, id := range r.screenDefaults {
		if id == layoutID {
			return true
		}
	}
	for _, b := range r.bindings {
		if b.LayoutID == layoutID {
			return true
		}
	}
	return false
}
