package transform

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is the process-wide table of transform descriptors. It is built
// once at startup, sealed, and read-only afterwards; contexts created through
// it are torn down by Close at shutdown.
//
//export TunTransformRegistry
type Registry struct {
	mu       sync.RWMutex
	table    [256]*Descriptor
	sealed   bool
	closed   bool
	contexts []Context
}

// NewRegistry creates an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a sealed registry holding the null, ChaCha20
// and LZ4 transforms.
//
//export TunNewDefaultRegistry
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []Descriptor{NullTransform, ChaCha20Transform, LZ4Transform} {
		// built-in descriptors are valid and the registry is still open
		_ = r.Register(d)
	}
	r.Seal()
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide sealed registry of built-in
// transforms. It is built on first use and shared by every caller; callers
// release their own contexts with Release and never Close it.
//
//export TunDefaultRegistry
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// Register publishes a descriptor under its id. Registering an id that is
// already present is a no-op, so each algorithm may call it unconditionally.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.table[d.ID]; existing != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Register",
			"package":   "transform",
			"transform": existing.Name,
			"id":        uint8(d.ID),
		}).Debug("Transform already registered")
		return nil
	}
	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, d.Name)
	}
	if d.Name == "" {
		return fmt.Errorf("transform %s: empty name", d.ID)
	}
	if d.Init == nil {
		return fmt.Errorf("transform %q: missing init function", d.Name)
	}

	desc := d
	r.table[d.ID] = &desc

	logrus.WithFields(logrus.Fields{
		"function":  "Register",
		"package":   "transform",
		"transform": d.Name,
		"id":        uint8(d.ID),
		"kind":      d.Kind.String(),
	}).Debug("Registered transform")
	return nil
}

// Seal freezes the registry against further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id ID) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := r.table[id]
	if d == nil {
		return Descriptor{}, false
	}
	return *d, true
}

// ByName returns the descriptor with the given name, ignoring case.
func (r *Registry) ByName(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.table {
		if d != nil && strings.EqualFold(d.Name, name) {
			return *d, true
		}
	}
	return Descriptor{}, false
}

// Descriptors returns every registered descriptor ordered by id.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, 4)
	for _, d := range r.table {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// NewContext initializes a context for the transform registered under id and
// tracks it for teardown by Close.
func (r *Registry) NewContext(id ID, secret []byte) (Context, error) {
	d, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransform, id)
	}

	ctx, err := d.Init(secret)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "NewContext",
			"package":   "transform",
			"transform": d.Name,
			"error":     err.Error(),
		}).Error("Transform initialization failed")
		return nil, fmt.Errorf("init %s: %w", d.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		_ = ctx.Deinit()
		return nil, fmt.Errorf("%w: registry shut down", ErrContextClosed)
	}
	r.contexts = append(r.contexts, ctx)
	return ctx, nil
}

// Release deinitializes ctx and stops tracking it. Contexts the registry does
// not track are deinitialized all the same.
func (r *Registry) Release(ctx Context) error {
	r.mu.Lock()
	r.contexts = slices.DeleteFunc(r.contexts, func(c Context) bool { return c == ctx })
	r.mu.Unlock()

	if err := ctx.Deinit(); err != nil {
		return fmt.Errorf("deinit %s: %w", ctx.ID(), err)
	}
	return nil
}

// Tracked returns the number of live contexts created through the registry.
func (r *Registry) Tracked() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}

// Close deinitializes every context created through the registry. It is
// safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	contexts := r.contexts
	r.contexts = nil
	r.closed = true
	r.mu.Unlock()

	var errs []error
	for _, ctx := range contexts {
		if err := ctx.Deinit(); err != nil {
			errs = append(errs, fmt.Errorf("deinit %s: %w", ctx.ID(), err))
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"package":  "transform",
		"contexts": len(contexts),
	}).Debug("Transform registry torn down")

	return errors.Join(errs...)
}
