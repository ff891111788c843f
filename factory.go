package propmapper

import (
	"fmt"
	"sync"
)

// ModelFactory turns a type and its input dictionary into a live, assignable
// instance. It may pre-populate the instance from dict or return it bare.
type ModelFactory interface {
	InstanceForType(t TypeID, dict map[string]any) (any, error)
}

// FactoryFunc adapts a function to ModelFactory.
type FactoryFunc func(t TypeID, dict map[string]any) (any, error)

func (f FactoryFunc) InstanceForType(t TypeID, dict map[string]any) (any, error) { return f(t, dict) }

// Factory is a ModelFactory backed by per-type constructors.
type Factory struct {
	mu    sync.RWMutex
	ctors map[TypeID]func(dict map[string]any) (any, error)
}

// NewFactory returns an empty Factory.
func NewFactory() *Factory {
	return &Factory{ctors: map[TypeID]func(map[string]any) (any, error){}}
}

// Register installs the constructor for t, replacing any previous one.
func (f *Factory) Register(t TypeID, ctor func(dict map[string]any) (any, error)) *Factory {
	f.mu.Lock()
	f.ctors[t] = ctor
	f.mu.Unlock()
	return f
}

// RegisterType registers new(T) as the constructor for TypeOf[T]() and
// returns that id.
func RegisterType[T any](f *Factory) TypeID {
	t := TypeOf[T]()
	f.Register(t, func(map[string]any) (any, error) { return new(T), nil })
	return t
}

func (f *Factory) InstanceForType(t TypeID, dict map[string]any) (any, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[t]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no constructor registered for %s", t)
	}
	return ctor(dict)
}
