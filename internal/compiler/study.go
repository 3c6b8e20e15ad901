package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/evalledger/internal/space"
)

// Study is a compiled study declaration: the search space plus the
// objectives a ledger for it records.
type Study struct {
	Name           string
	Definitions    []space.Definition
	Objectives     []string
	ReferencePoint []float64

	// positions maps hyperparameter names to their source position.
	positions map[string]token.Pos
}

// NewSpace builds the configuration space. Call Validate first to get
// every problem at once; NewSpace stops at the first.
func (s *Study) NewSpace() (*space.Space, error) {
	return space.New(s.Definitions...)
}

// MultiObjective reports whether the study declares more than one
// objective.
func (s *Study) MultiObjective() bool {
	return len(s.Objectives) > 1
}

// CompileStudy parses a CUE study value.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// A study looks like:
//
//	name: "svm"
//	objectives: ["error", "latency"]
//	reference_point: [1.0, 100.0]
//	space: {
//		C:      {type: "float", lower: 0.01, upper: 100, log: true}
//		kernel: {type: "categorical", choices: ["rbf", "linear"]}
//	}
//
// Only space is required. Objectives default to a single "cost".
func CompileStudy(v cue.Value) (*Study, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	study := &Study{Objectives: []string{"cost"}}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		study.Name = name
	}

	spaceVal := v.LookupPath(cue.ParsePath("space"))
	if !spaceVal.Exists() {
		return nil, &CompileError{
			Field:   "space",
			Message: "space is required",
			Pos:     v.Pos(),
		}
	}
	defs, positions, err := compileDefinitions(spaceVal)
	if err != nil {
		return nil, err
	}
	study.Definitions = defs
	study.positions = positions

	if objVal := v.LookupPath(cue.ParsePath("objectives")); objVal.Exists() {
		objectives, err := stringList(objVal, "objectives")
		if err != nil {
			return nil, err
		}
		if len(objectives) == 0 {
			return nil, &CompileError{
				Field:   "objectives",
				Message: "at least one objective is required",
				Pos:     objVal.Pos(),
			}
		}
		study.Objectives = objectives
	}

	if refVal := v.LookupPath(cue.ParsePath("reference_point")); refVal.Exists() {
		ref, err := numberList(refVal, "reference_point")
		if err != nil {
			return nil, err
		}
		study.ReferencePoint = ref
	}

	return study, nil
}

// CompileSpace parses the hyperparameter struct of a study, e.g. the value
// at path "space", and builds the space.
func CompileSpace(v cue.Value) (*space.Space, error) {
	defs, _, err := compileDefinitions(v)
	if err != nil {
		return nil, err
	}
	return space.New(defs...)
}

// compileDefinitions parses every field of the space struct into a
// definition, in source order.
func compileDefinitions(v cue.Value) ([]space.Definition, map[string]token.Pos, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}

	var defs []space.Definition
	positions := make(map[string]token.Pos)
	for iter.Next() {
		name := iter.Label()
		def, err := compileDefinition(name, iter.Value())
		if err != nil {
			return nil, nil, err
		}
		defs = append(defs, def)
		positions[name] = iter.Value().Pos()
	}

	if len(defs) == 0 {
		return nil, nil, &CompileError{
			Field:   "space",
			Message: "at least one hyperparameter is required",
			Pos:     v.Pos(),
		}
	}
	return defs, positions, nil
}

func compileDefinition(name string, v cue.Value) (space.Definition, error) {
	def := space.Definition{Name: name}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return def, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("hyperparameter %q: type is required", name),
			Pos:     v.Pos(),
		}
	}
	kind, err := typeVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}
	def.Type = space.Kind(kind)

	for _, bound := range []struct {
		field string
		dst   *float64
	}{
		{"lower", &def.Lower},
		{"upper", &def.Upper},
	} {
		bv := v.LookupPath(cue.ParsePath(bound.field))
		if !bv.Exists() {
			if def.Type == space.KindFloat || def.Type == space.KindInt {
				return def, &CompileError{
					Field:   bound.field,
					Message: fmt.Sprintf("hyperparameter %q: %s is required for %s", name, bound.field, kind),
					Pos:     v.Pos(),
				}
			}
			continue
		}
		f, err := bv.Float64()
		if err != nil {
			return def, formatCUEError(err)
		}
		*bound.dst = f
	}

	if logVal := v.LookupPath(cue.ParsePath("log")); logVal.Exists() {
		def.Log, err = logVal.Bool()
		if err != nil {
			return def, formatCUEError(err)
		}
	}

	if choicesVal := v.LookupPath(cue.ParsePath("choices")); choicesVal.Exists() {
		def.Choices, err = stringList(choicesVal, "choices")
		if err != nil {
			return def, err
		}
	}

	if defaultVal := v.LookupPath(cue.ParsePath("default")); defaultVal.Exists() {
		def.Default, err = scalar(defaultVal, "default")
		if err != nil {
			return def, err
		}
	}

	if valueVal := v.LookupPath(cue.ParsePath("value")); valueVal.Exists() {
		def.Value, err = scalar(valueVal, "value")
		if err != nil {
			return def, err
		}
	}

	return def, nil
}

// scalar extracts a concrete string, number or bool.
func scalar(v cue.Value, field string) (any, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return n, nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func numberList(v cue.Value, field string) ([]float64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of numbers", Pos: v.Pos()}
	}
	out := []float64{}
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, f)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with a position wins
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
