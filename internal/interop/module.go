package interop

import (
	"errors"
	"fmt"
	"sync"
)

// CoreModuleName is the name the core module registers under.
const CoreModuleName = "ndbuf_core"

// Constructor builds a Buffer from host arguments.
type Constructor func(data any, shape, strides []int, format string) (*Buffer, error)

// Host is a foreign runtime that exported types are registered with.
type Host interface {
	DefineType(module, name string, ctor Constructor) error
}

// Module collects type definitions and registers them with a host once.
//
// There is no package-level module. The process creates one at start-up,
// typically with NewCoreModule, and calls Register.
type Module struct {
	name  string
	types []typeDef
	index map[string]int

	mu         sync.Mutex
	registered bool
	once       sync.Once
	err        error
}

type typeDef struct {
	name string
	ctor Constructor
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		name:  name,
		index: make(map[string]int),
	}
}

// NewCoreModule creates the module exposing the Buffer type.
func NewCoreModule() *Module {
	m := NewModule(CoreModuleName)
	if err := m.AddType("Buffer", Construct); err != nil {
		// Fresh module cannot be registered yet.
		panic(err)
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// AddType defines a type. Adding a name that is already defined is a
// no-op that keeps the first definition. Types cannot be added after
// Register.
func (m *Module) AddType(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return errors.New("interop: type needs a name and a constructor")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return fmt.Errorf("interop: module %q already registered, cannot add %q", m.name, name)
	}
	if _, ok := m.index[name]; ok {
		return nil
	}
	m.index[name] = len(m.types)
	m.types = append(m.types, typeDef{name: name, ctor: ctor})
	return nil
}

// Types returns the defined type names in definition order.
func (m *Module) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.types))
	for i, def := range m.types {
		names[i] = def.name
	}
	return names
}

// Lookup returns the constructor registered for name.
func (m *Module) Lookup(name string) (Constructor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.types[i].ctor, true
}

// Register defines every type with host. It runs once; later calls
// return the first call's result without contacting any host.
func (m *Module) Register(host Host) error {
	m.once.Do(func() {
		m.mu.Lock()
		m.registered = true
		types := append([]typeDef(nil), m.types...)
		m.mu.Unlock()

		if host == nil {
			m.err = errors.New("interop: nil host")
			return
		}
		for _, def := range types {
			if err := host.DefineType(m.name, def.name, def.ctor); err != nil {
				m.err = fmt.Errorf("interop: register %s.%s: %w", m.name, def.name, err)
				return
			}
		}
	})
	return m.err
}
