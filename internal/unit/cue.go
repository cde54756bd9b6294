package unit

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// parseCUE evaluates a CUE file and reads the top-level "units" list.
// A file without a units field declares no units.
func parseCUE(res Resource) ([]Declaration, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(res.Data, cue.Filename(res.Path))
	if err := v.Err(); err != nil {
		return nil, cueError(res.Path, err)
	}

	unitsVal := v.LookupPath(cue.ParsePath("units"))
	if !unitsVal.Exists() {
		return nil, nil
	}

	iter, err := unitsVal.List()
	if err != nil {
		return nil, cueError(res.Path, err)
	}

	var decls []Declaration
	for i := 0; iter.Next(); i++ {
		d, err := cueDeclaration(res.Path, i, iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func cueDeclaration(path string, index int, u cue.Value) (Declaration, error) {
	var d Declaration

	if nameVal := u.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return d, cueError(path, err)
		}
		d.Name = name
		d.Named = true
	}

	if ttVal := u.LookupPath(cue.ParsePath("transactionType")); ttVal.Exists() {
		tt, err := ttVal.String()
		if err != nil {
			return d, cueError(path, err)
		}
		d.TransactionType = tt
	}

	if provVal := u.LookupPath(cue.ParsePath("provider")); provVal.Exists() {
		providers, err := cueProviders(provVal)
		if err != nil {
			return d, cueError(path, err)
		}
		d.Providers = providers
	}

	propsVal := u.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return d, nil
	}
	propIter, err := propsVal.List()
	if err != nil {
		return d, cueError(path, err)
	}
	for propIter.Next() {
		p := propIter.Value()
		nameVal := p.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return d, &LoadError{Code: ErrCodeInvalidUnit, Resource: path, Message: fmt.Sprintf("unit %d: property without name", index), Pos: p.Pos()}
		}
		name, err := nameVal.String()
		if err != nil {
			return d, cueError(path, err)
		}
		value, err := cueScalar(p.LookupPath(cue.ParsePath("value")))
		if err != nil {
			return d, cueError(path, err)
		}
		d.Properties = append(d.Properties, Property{Name: name, Value: value})
	}
	return d, nil
}

// cueProviders accepts a string or a list of strings.
func cueProviders(v cue.Value) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	var list []string
	if err := v.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// cueScalar renders a property value as a string. A missing value is "".
func cueScalar(v cue.Value) (string, error) {
	if !v.Exists() {
		return "", nil
	}
	if s, err := v.String(); err == nil {
		return s, nil
	}
	var raw any
	if err := v.Decode(&raw); err != nil {
		return "", err
	}
	return fmt.Sprint(raw), nil
}

// cueError keeps the first CUE error and its position.
func cueError(path string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeParseFailed, Resource: path, Message: err.Error()}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	le.Message = errs[0].Error()
	if positions := errors.Positions(errs[0]); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
