// Package rustlerjar is a registry mapping a market's short name to the
// shared, mutex-guarded rustler instance that gathers quotes for it.
// Several markets can share one rustler (e.g. a single exchange adapter
// serving more than one listed venue).
package rustlerjar

import (
	"sync"

	"github.com/corraldata/rustlers/internal/rustler"
)

// Handle wraps a rustler.Rustler with the single-writer lock every access
// must go through, mirroring a shared Arc<Mutex<Box<dyn Rustler>>>.
type Handle struct {
	mu sync.Mutex
	r  rustler.Rustler
}

// Use runs fn with exclusive access to the underlying rustler.
func (h *Handle) Use(fn func(rustler.Rustler) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.r)
}

// Jar is a two-level registry: rustler name -> shared Handle, and market
// short name -> rustler name.
type Jar struct {
	rustlers map[string]*Handle
	mappings map[string]string
}

// Get returns the Handle responsible for marketShortName, if any market
// was registered under that name.
func (j *Jar) Get(marketShortName string) (*Handle, bool) {
	name, ok := j.mappings[marketShortName]
	if !ok {
		return nil, false
	}
	h, ok := j.rustlers[name]
	return h, ok
}

// Builder assembles a Jar from rustler instances, each registered under
// one or more market short names.
type Builder struct {
	instances []rustler.Rustler
	mappings  map[string]string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{mappings: make(map[string]string)}
}

// Register adds r to the jar under every given market short name. Calling
// Register for the same rustler instance with multiple short names lets
// several markets share it.
func (b *Builder) Register(r rustler.Rustler, marketShortNames ...string) *Builder {
	for _, name := range marketShortNames {
		b.mappings[name] = r.Name()
	}
	b.instances = append(b.instances, r)
	return b
}

// Build finalizes the Jar.
func (b *Builder) Build() *Jar {
	rustlers := make(map[string]*Handle, len(b.instances))
	for _, r := range b.instances {
		rustlers[r.Name()] = &Handle{r: r}
	}

	mappings := make(map[string]string, len(b.mappings))
	for k, v := range b.mappings {
		mappings[k] = v
	}

	return &Jar{rustlers: rustlers, mappings: mappings}
}
