// Package validator wraps go-playground/validator behind a small struct so
// handlers and the catalog loader share one configured instance.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New builds a validator. Custom rules are registered here if a module
// needs one.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates every tagged field of s.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates one value against a tag expression.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}
