package core

import (
	"context"
	"sort"
)

// Validator runs every check of one import profile over a dataset.
// A Validator holds only configuration; each call builds fresh working maps,
// so one Validator may serve concurrent runs.
type Validator struct {
	profile Profile
	rules   []FormatRule
}

// Option configures a Validator.
type Option func(*Validator)

// WithFormatRules layers user-defined format rules on every run.
func WithFormatRules(rules []FormatRule) Option {
	return func(v *Validator) {
		v.rules = append(v.rules, rules...)
	}
}

// NewValidator creates a validator for the given profile.
func NewValidator(profile Profile, opts ...Option) *Validator {
	v := &Validator{profile: profile}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Profile returns the profile the validator was built for.
func (v *Validator) Profile() Profile {
	return v.profile
}

// Validate runs, in order, the per-cell field pass, duplicate detection,
// identity matching and diacritic reconciliation, and returns all findings
// sorted by row. Within a row, findings keep the order of the checks.
//
// extra format rules are applied in addition to those given at construction.
func (v *Validator) Validate(rows []Row, extra ...FormatRule) []ValidationError {
	errs, _ := v.ValidateContext(context.Background(), rows, extra...)
	return errs
}

// ValidateContext is Validate with coarse-grained cancellation: ctx is
// checked between stages and every few hundred rows of the field pass.
func (v *Validator) ValidateContext(ctx context.Context, rows []Row, extra ...FormatRule) ([]ValidationError, error) {
	rules := v.rules
	if len(extra) > 0 {
		rules = append(append([]FormatRule(nil), v.rules...), extra...)
	}
	compiled := compileFormatRules(rules)

	var errs []ValidationError
	for i, row := range rows {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		errs = validateRow(errs, row, i+1, v.profile.Columns, compiled)
	}

	stages := []func() []ValidationError{
		func() []ValidationError { return FindDuplicates(rows, v.profile.UniqueColumns) },
		func() []ValidationError { return MatchIdentities(rows, v.profile.ParentSlots) },
		func() []ValidationError { return ReconcileDiacritics(rows, v.profile.NameColumns) },
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		errs = append(errs, stage()...)
	}

	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Row < errs[j].Row
	})
	return errs, nil
}
