package core

// ResolveIdentity returns a copy of errs in which every open identity
// inconsistency is resolved to its reference id. Warning-tier matches (name
// only) are left open unless includeWarnings is set; they are meant for
// review, not automatic merging.
func ResolveIdentity(errs []ValidationError, includeWarnings bool) []ValidationError {
	out := make([]ValidationError, len(errs))
	copy(out, errs)

	for i, e := range out {
		if e.Kind != KindIdentity || e.Identity == nil || !e.IsOpen() {
			continue
		}
		if e.EffectiveSeverity() == SeverityWarning && !includeWarnings {
			continue
		}
		out[i] = e.Resolve(e.Identity.ReferenceID)
	}
	return out
}

// Dismiss returns a copy of e resolved to its own value. The finding stays in
// the list for the audit trail but no longer counts as open.
func Dismiss(e ValidationError) ValidationError {
	return e.Resolve(e.Value)
}

// ApplyResolutions writes the corrected values of resolved errors into copies
// of the affected rows. Unaffected rows are shared with the input. A
// resolution is only written if the cell still holds the erroneous value, so
// applying the same errors twice changes nothing the second time.
//
// Recording a resolution (setting CorrectedValue) and applying it to the
// data are separate steps; diacritic notices arrive resolved but are only
// written back here.
func ApplyResolutions(rows []Row, errs []ValidationError) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	copied := make(map[int]bool)

	for _, e := range errs {
		if e.IsOpen() || e.Row < 1 || e.Row > len(rows) {
			continue
		}
		corrected := *e.CorrectedValue
		if corrected == e.Value {
			continue
		}
		idx := e.Row - 1
		if CellString(out[idx], e.Column) != e.Value {
			continue
		}
		if !copied[idx] {
			out[idx] = cloneRow(out[idx])
			copied[idx] = true
		}
		out[idx][e.Column] = corrected
	}
	return out
}

func cloneRow(r Row) Row {
	c := make(Row, len(r)+1)
	for k, v := range r {
		c[k] = v
	}
	return c
}
