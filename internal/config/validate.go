package config

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate checks the configuration for structural problems before any
// module is instantiated.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (only \"1\" is supported)", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	providers := 0
	for id := range cfg.Modules {
		if id == "" {
			errs = append(errs, errors.New("config: empty module ID"))
			continue
		}
		if !strings.Contains(id, ".") {
			errs = append(errs, fmt.Errorf("config: module ID %q must be namespaced (namespace.name)", id))
		}
		if strings.HasPrefix(id, "provider.") {
			providers++
		}
	}
	if providers > 1 {
		errs = append(errs, errors.New("config: at most one provider module may be configured"))
	}

	return errors.Join(errs...)
}

// namespaceRank orders module namespaces for load: providers first so the
// chat core can bind to one, the gateway last so it starts serving only
// after everything it discovers is in place.
var namespaceRank = map[string]int{
	"provider": 0,
	"observe":  1,
	"gateway":  2,
}

// Resolve returns the ordered list of module IDs to load from cfg.
// Within a namespace, IDs load in lexical order for determinism.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}

	rank := func(id string) int {
		ns, _, _ := strings.Cut(id, ".")
		if r, ok := namespaceRank[ns]; ok {
			return r
		}
		return len(namespaceRank)
	}

	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}
