package client

import "fmt"

// ParamFormatter maps one positional argument to its wire form. Returning a nil
// value declines, and the argument is sent unchanged.
type ParamFormatter func(v any) (any, error)

// ResultFormatter maps the raw result of a call to the value returned to the caller.
type ResultFormatter func(v any) (any, error)

// Descriptor declares one remote method. Descriptors are read-only once a
// client has been built from them.
type Descriptor struct {
	// Name identifies the bound method on the client and labels traces.
	Name string
	// WireMethod is the "method" member sent on the wire.
	WireMethod string
	// ParamFormatters[i] applies to argument i, when both exist.
	ParamFormatters []ParamFormatter
	// ResultFormatter is optional; without it the raw result is returned.
	ResultFormatter ResultFormatter
}

// ConfigError reports an invalid method registry.
type ConfigError struct {
	Index  int
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("client: registry entry %d (%q): %s", e.Index, e.Name, e.Reason)
}

func validateRegistry(registry []Descriptor) error {
	names := make(map[string]int, len(registry))
	wires := make(map[string]int, len(registry))
	for i, d := range registry {
		if d.Name == "" {
			return &ConfigError{Index: i, Name: d.Name, Reason: "empty name"}
		}
		if d.WireMethod == "" {
			return &ConfigError{Index: i, Name: d.Name, Reason: "empty wire method"}
		}
		if j, dup := names[d.Name]; dup {
			return &ConfigError{Index: i, Name: d.Name, Reason: fmt.Sprintf("duplicate name, first declared at %d", j)}
		}
		if j, dup := wires[d.WireMethod]; dup {
			return &ConfigError{Index: i, Name: d.Name, Reason: fmt.Sprintf("duplicate wire method %q, first declared at %d", d.WireMethod, j)}
		}
		names[d.Name] = i
		wires[d.WireMethod] = i
	}
	return nil
}
