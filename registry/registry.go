package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/providers/facebook"
	"github.com/giantswarm/multi-oauth/providers/github"
	"github.com/giantswarm/multi-oauth/providers/google"
	"github.com/giantswarm/multi-oauth/providers/kakao"
	"github.com/giantswarm/multi-oauth/providers/naver"
	"github.com/giantswarm/multi-oauth/providers/x"
	"github.com/giantswarm/multi-oauth/transport"
)

// Provider names of the built-in adapters.
const (
	Google   = "google"
	Kakao    = "kakao"
	Naver    = "naver"
	GitHub   = "github"
	Facebook = "facebook"
	X        = "x"
)

// Constructor builds a provider from credentials. A nil client selects the
// adapter's default transport.
type Constructor func(creds providers.Credentials, client *transport.Client) (providers.Provider, error)

// UnknownProviderError is returned when no constructor exists for a name.
type UnknownProviderError struct {
	Name      string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Registry is a read-only name to constructor table.
type Registry struct {
	constructors map[string]Constructor
	names        []string
}

var defaultRegistry = New(map[string]Constructor{
	Google:   google.New,
	Kakao:    kakao.New,
	Naver:    naver.New,
	GitHub:   github.New,
	Facebook: facebook.New,
	X:        x.New,
})

// Default returns the registry of built-in providers.
func Default() *Registry {
	return defaultRegistry
}

// New builds a registry from constructors. The map is copied; nil constructors
// are skipped.
func New(constructors map[string]Constructor) *Registry {
	r := &Registry{constructors: make(map[string]Constructor, len(constructors))}
	for name, fn := range constructors {
		if fn == nil {
			continue
		}
		r.constructors[name] = fn
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Create constructs the named provider. Construction errors, such as a
// *providers.ConfigurationError, are returned unchanged.
func (r *Registry) Create(name string, creds providers.Credentials, client *transport.Client) (providers.Provider, error) {
	fn, ok := r.constructors[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name, Available: r.Available()}
	}
	return fn(creds, client)
}

// Available returns the sorted provider names.
func (r *Registry) Available() []string {
	return append([]string(nil), r.names...)
}

// Has reports whether name has a constructor.
func (r *Registry) Has(name string) bool {
	_, ok := r.constructors[name]
	return ok
}
