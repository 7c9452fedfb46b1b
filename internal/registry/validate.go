package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

// ValidateRegistry checks that every registered kind is complete for every
// type it claims to support: it has an eval function, port functions, unique
// port names and input defaults of the declared port kind.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var result *multierror.Error

	for _, kind := range r.Kinds() {
		def := r.definitions[kind]
		if def.Kind == "" {
			result = multierror.Append(result, fmt.Errorf("definition registered without a kind"))
		}
		if def.Eval == nil {
			result = multierror.Append(result, fmt.Errorf("node kind '%s': missing eval function", kind))
		}
		if def.Inputs == nil || def.Outputs == nil {
			result = multierror.Append(result, fmt.Errorf("node kind '%s': missing port declarations", kind))
			continue
		}

		types := def.Types
		if len(types) == 0 {
			types = []portvalue.Kind{portvalue.KindNone}
		}
		for _, t := range types {
			if err := validatePorts(kind, t, "input", def.Inputs(t)); err != nil {
				result = multierror.Append(result, err)
			}
			if err := validatePorts(kind, t, "output", def.Outputs(t)); err != nil {
				result = multierror.Append(result, err)
			}
		}
		logger.Debug("Node kind validated.", "kind", kind, "types", len(types))
	}

	return result.ErrorOrNil()
}

func validatePorts(kind string, t portvalue.Kind, side string, ports []Port) error {
	var result *multierror.Error
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.Name == "" {
			result = multierror.Append(result, fmt.Errorf("node kind '%s' (%s): unnamed %s port", kind, t, side))
			continue
		}
		if seen[p.Name] {
			result = multierror.Append(result, fmt.Errorf("node kind '%s' (%s): duplicate %s port '%s'", kind, t, side, p.Name))
		}
		seen[p.Name] = true
		for _, v := range p.InitialValues() {
			if v == nil || v.Kind() != p.Kind {
				result = multierror.Append(result, fmt.Errorf("node kind '%s' (%s): %s port '%s' default does not match kind %s", kind, t, side, p.Name, p.Kind))
				break
			}
		}
	}
	return result.ErrorOrNil()
}
