package property

import (
	"context"
	"errors"
)

// Scope is the visibility class of a property.
type Scope string

const (
	ScopePublic    Scope = "public"
	ScopeProtected Scope = "protected"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("property store closed")

// Value is a property value together with the scope it was read from.
type Value struct {
	Data  string
	Scope Scope
}

// Change announces that the listed keys were written.
type Change struct {
	Keys []string
}

// Has reports whether key is among the changed keys.
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Store is the shared property channel as seen by one peer.
type Store interface {
	// Get reads key, public scope first. ok is false when neither scope
	// holds a non-empty value.
	Get(ctx context.Context, key string) (v Value, ok bool, err error)

	// SetPublic publishes value under key in the public scope.
	SetPublic(ctx context.Context, key, value string) error

	// Changes delivers change notifications. The channel is closed when
	// the store is closed.
	Changes() <-chan Change

	// LocalUser returns the identity of the local participant once known.
	LocalUser() (string, bool)

	Close() error
}

// lookup applies the scope precedence rule. An empty public value does
// not shadow a protected one.
func lookup(public, protected map[string]string, key string) (Value, bool) {
	if v, ok := public[key]; ok && v != "" {
		return Value{Data: v, Scope: ScopePublic}, true
	}
	if v, ok := protected[key]; ok && v != "" {
		return Value{Data: v, Scope: ScopeProtected}, true
	}
	return Value{}, false
}
