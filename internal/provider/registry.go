package provider

import (
	"fmt"
	"sync"
)

var (
	// providers holds all registered InstanceAPI implementations.
	providers = make(map[string]InstanceAPI)
	mu        sync.RWMutex
)

// Register registers an InstanceAPI under a provider name (e.g. "aws").
func Register(name string, api InstanceAPI) {
	mu.Lock()
	defer mu.Unlock()
	if api == nil {
		panic("provider: Register api is nil")
	}
	if _, dup := providers[name]; dup {
		panic("provider: Register called twice for provider " + name)
	}
	providers[name] = api
}

// Get returns the InstanceAPI registered under name.
func Get(name string) (InstanceAPI, error) {
	mu.RLock()
	defer mu.RUnlock()
	api, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return api, nil
}

// List returns all registered provider names.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

// UnregisterAll clears all registered providers (used by tests).
func UnregisterAll() {
	mu.Lock()
	defer mu.Unlock()
	providers = make(map[string]InstanceAPI)
}
