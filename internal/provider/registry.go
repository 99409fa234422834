package provider

import (
	"github.com/I7ZT1/club-manager-panel/internal/provider/domain"
)

// Registry holds the ordered fallback chain per currency. It is assembled
// once at startup and read-only afterwards; chains for different currencies
// are independent and a provider registered for one currency implies nothing
// about another.
type Registry struct {
	chains map[domain.Currency][]domain.Client
}

func NewRegistry() *Registry {
	return &Registry{chains: make(map[domain.Currency][]domain.Client)}
}

// Register appends clients to a currency's chain in priority order.
func (r *Registry) Register(currency domain.Currency, clients ...domain.Client) {
	r.chains[currency] = append(r.chains[currency], clients...)
}

// Chain returns the priority-ordered clients for a currency. The returned
// slice must not be mutated.
func (r *Registry) Chain(currency domain.Currency) []domain.Client {
	return r.chains[currency]
}

// Supports reports whether any provider is registered for the currency.
func (r *Registry) Supports(currency domain.Currency) bool {
	return len(r.chains[currency]) > 0
}
