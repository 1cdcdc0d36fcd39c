package llm

import (
	"fmt"
	"sort"
	"sync"
)

// defines a function that creates a new provider instance
type ProviderFactory func() (Provider, error)

// global registry of available providers
var (
	providers   = make(map[string]ProviderFactory)
	providersMu sync.RWMutex
)

// registers a provider factory with the given name
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// creates a new provider instance based on the given name
func NewProvider(name string) (Provider, error) {
	providersMu.RLock()
	factory, exists := providers[name]
	providersMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}

// RegisteredProviders returns the registered provider names in sorted order
func RegisteredProviders() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
