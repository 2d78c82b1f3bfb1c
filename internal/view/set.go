package view

import "fmt"

// Set groups the three views of a record type with their policies.
type Set struct {
	// Fields are the record's own field names.
	Fields []string

	Create  Policy
	Replace Policy
	Patch   Policy

	CreateView  any
	ReplaceView any
	PatchView   any
}

// Validate checks every view against its policy.
func (s Set) Validate() error {
	checks := []struct {
		kind   Kind
		policy Policy
		v      any
	}{
		{Create, s.Create, s.CreateView},
		{Replace, s.Replace, s.ReplaceView},
		{Patch, s.Patch, s.PatchView},
	}
	for _, c := range checks {
		if c.v == nil {
			return fmt.Errorf("%s view missing", c.kind)
		}
		if err := Check(c.kind, c.v, c.policy.Fields(s.Fields)); err != nil {
			return err
		}
	}
	return nil
}

// MustValidate panics when Validate fails. Call it at start-up.
func (s Set) MustValidate() Set {
	if err := s.Validate(); err != nil {
		panic("view: " + err.Error())
	}
	return s
}
