// Package core provides the validation and identity-consolidation engine for
// LehrerOffice exports headed for PUPIL.
//
// The package has no transport or storage dependencies. It can be used by
// the HTTP service, the CLI, or tests without modification.
//
// # Architecture
//
// A [Profile] describes one import type: its columns, which columns must be
// unique, which hold names, and where the parent slots live. Profiles are
// built per session by the tables package and handed to a [Validator]:
//
//	reg := tables.NewRegistry()
//	profile, err := reg.Get(tables.Students)
//	if err != nil {
//	    return err
//	}
//	errs := core.NewValidator(profile).Validate(rows)
//
// # Checks
//
// Validate runs four stages and returns their findings sorted by row:
//
//  1. Field pass: required cells, declared type, user format rules
//  2. [FindDuplicates] over the profile's unique columns
//  3. [MatchIdentities] over the parent slots
//  4. [ReconcileDiacritics] over the name columns
//
// # Identity Matching
//
// Parent identities are matched by decreasing reliability: AHV number, then
// name and street, then the sorted pair of both parents' names, then a single
// name disambiguated by a shared phone number or a matching other parent.
// A (row, column) flagged by one strategy is never reported again by a
// weaker one. Findings carry an [IdentityMatch] with the reference id so
// bulk resolution never has to parse messages.
//
// # Resolution
//
// A [ValidationError] is open until CorrectedValue is set. Resolving a
// finding and writing its value back into the rows are separate steps:
// see [ResolveIdentity], [Dismiss] and [ApplyResolutions].
//
// # Concurrency
//
// A Validator holds configuration only. A [Runner] runs validation in the
// background with last-request-wins semantics, and a [Limiter] bounds the
// number of runs in flight across sessions.
package core
