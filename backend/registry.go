package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/bindkit"
)

// Factory opens a new device.
type Factory func() (Device, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	// Native > Software (Software is the fallback).
	backendPriority = []string{NameNative, NameSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a sorted list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens a device from the backend registered under name.
func Open(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownBackend, name)
	}
	return factory()
}

// OpenDefault opens the best available backend based on priority.
// Backends that fail to open are skipped with a warning.
func OpenDefault() (Device, error) {
	for _, name := range backendPriority {
		if !IsRegistered(name) {
			continue
		}
		d, err := Open(name)
		if err != nil {
			bindkit.Logger().Warn("backend: open failed, trying next", "backend", name, "err", err)
			continue
		}
		return d, nil
	}
	return nil, ErrBackendNotAvailable
}
