package core

// identity.go detects parent/guardian records that denote the same real
// person but carry different stored ids.
//
// Matching runs as a sequence of passes in decreasing reliability:
//
//	matchByAHV          identical AHV number                 high    error
//	matchByNameAddress  same name and same street            medium  error
//	matchByParentPair   same pair of parents on two rows     low     warning
//	matchByNameOnly     same name, confirmed by phone or     low     warning
//	                    by the other parent's name
//
// Within one match key the first id seen in row order is the correct one;
// every later slot with a different id is reported on its own (losing) row.
// A (row, id column) reported by one pass is never reported again by a later
// pass. The passes thread an explicit matchState; nothing is kept between
// calls to MatchIdentities.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/pupilbridge/internal/normalize"
)

const nameAddressWarning = "same name and address can still be two different people (e.g. parent and adult child)"

// slotEntry is one filled parent slot of one row.
type slotEntry struct {
	row        int // 1-based
	slot       int
	label      string
	idColumn   string
	id         string
	ahv        string // 13 digits or ""
	ahvDisplay string
	nameKey    string
	name       string // display form "Surname Firstname"
	street     string // folded
	phones     []string
	otherNames []string // name keys of the other slots on the same row
}

func (e slotEntry) key() string {
	return fmt.Sprintf("%d\x1f%s", e.row, e.idColumn)
}

// conflictingAHV reports whether both entries carry AHV numbers and they
// differ. Such entries are never merged by a name-based pass.
func (e slotEntry) conflictingAHV(other slotEntry) bool {
	return e.ahv != "" && other.ahv != "" && e.ahv != other.ahv
}

func (e slotEntry) sharesPhone(other slotEntry) bool {
	for _, p := range e.phones {
		for _, q := range other.phones {
			if p == q {
				return true
			}
		}
	}
	return false
}

func (e slotEntry) sharesOtherParent(other slotEntry) bool {
	for _, n := range e.otherNames {
		for _, m := range other.otherNames {
			if n == m {
				return true
			}
		}
	}
	return false
}

// idRef is the id a slot should carry and where it was established.
type idRef struct {
	id    string
	row   int
	label string
}

// matchState accumulates the findings of the matching passes.
type matchState struct {
	resolved  map[string]bool  // slot keys already reported
	canonical map[string]idRef // losing slot key -> the id it should carry
	errs      []ValidationError
}

func newMatchState() matchState {
	return matchState{
		resolved:  make(map[string]bool),
		canonical: make(map[string]idRef),
	}
}

// ref returns the id e should be compared by: its own, or the reference id
// it was already matched to.
func (st matchState) ref(e slotEntry) idRef {
	if r, ok := st.canonical[e.key()]; ok {
		return r
	}
	return idRef{id: e.id, row: e.row, label: e.label}
}

type matchKind struct {
	strategy    Strategy
	reliability Reliability
	severity    Severity
	warning     string
}

var (
	kindAHV         = matchKind{StrategyAHV, ReliabilityHigh, SeverityError, ""}
	kindNameAddress = matchKind{StrategyNameAddress, ReliabilityMedium, SeverityError, nameAddressWarning}
	kindNamePair    = matchKind{StrategyNamePair, ReliabilityLow, SeverityWarning, ""}
	kindNameOnly    = matchKind{StrategyNameOnly, ReliabilityLow, SeverityWarning, ""}
)

// flag records that e should carry ref.id instead of its own id.
func (st matchState) flag(e slotEntry, ref idRef, mk matchKind, matchKey string) matchState {
	k := e.key()
	if st.resolved[k] {
		return st
	}
	st.resolved[k] = true
	st.canonical[k] = ref

	msg := fmt.Sprintf("%s %s has ID %q, but the same person was recorded with ID %q in row %d (%s match, %s reliability)",
		e.label, matchKey, e.id, ref.id, ref.row, mk.strategy, mk.reliability)
	if mk.warning != "" {
		msg += "; " + mk.warning
	}

	st.errs = append(st.errs, ValidationError{
		Row:      e.row,
		Column:   e.idColumn,
		Value:    e.id,
		Message:  msg,
		Severity: mk.severity,
		Kind:     KindIdentity,
		Identity: &IdentityMatch{
			Strategy:      mk.strategy,
			Reliability:   mk.reliability,
			MatchKey:      matchKey,
			SlotLabel:     e.label,
			ReferenceRow:  ref.row,
			ReferenceID:   ref.id,
			ReferenceSlot: ref.label,
			WarningText:   mk.warning,
		},
	})
	return st
}

// MatchIdentities runs all matching passes over rows and returns the
// identity inconsistencies in the order the passes found them.
func MatchIdentities(rows []Row, slots []ParentSlot) []ValidationError {
	if len(slots) == 0 {
		return nil
	}
	entries := collectSlotEntries(rows, slots)

	st := newMatchState()
	st = matchByAHV(st, entries)
	st = matchByNameAddress(st, entries)
	st = matchByParentPair(st, entries)
	st = matchByNameOnly(st, entries)
	return st.errs
}

// collectSlotEntries extracts the filled parent slots of every row. Index i
// of the result holds the entries of row i+1, in slot order; slots without
// any id, name or AHV are omitted.
func collectSlotEntries(rows []Row, slots []ParentSlot) [][]slotEntry {
	out := make([][]slotEntry, len(rows))
	for i, row := range rows {
		var entries []slotEntry
		for s, slot := range slots {
			e := slotEntry{
				row:      i + 1,
				slot:     s,
				label:    slot.Label,
				idColumn: slot.IDColumn,
				id:       CellString(row, slot.IDColumn),
			}
			if slot.AHVColumn != "" {
				raw := CellString(row, slot.AHVColumn)
				e.ahv = normalize.AHVKey(raw)
				if f, ok := normalize.FormatAHV(raw); ok {
					e.ahvDisplay = f
				}
			}
			surname := CellString(row, slot.NameColumn)
			firstname := CellString(row, slot.FirstNameColumn)
			e.nameKey = normalize.NameKey(surname, firstname)
			e.name = strings.TrimSpace(surname + " " + firstname)
			if slot.StreetColumn != "" {
				e.street = normalize.Fold(CellString(row, slot.StreetColumn))
			}
			for _, col := range slot.PhoneColumns {
				if p := normalize.PhoneKey(CellString(row, col)); p != "" {
					e.phones = append(e.phones, p)
				}
			}
			if e.id == "" && e.nameKey == "" && e.ahv == "" {
				continue
			}
			entries = append(entries, e)
		}

		for a := range entries {
			for b := range entries {
				if a != b && entries[b].nameKey != "" {
					entries[a].otherNames = append(entries[a].otherNames, entries[b].nameKey)
				}
			}
		}
		out[i] = entries
	}
	return out
}

// matchByAHV flags slots whose AHV number was first seen with another id.
func matchByAHV(st matchState, entries [][]slotEntry) matchState {
	firstSeen := make(map[string]slotEntry)
	for _, rowEntries := range entries {
		for _, e := range rowEntries {
			if e.ahv == "" || e.id == "" {
				continue
			}
			first, ok := firstSeen[e.ahv]
			if !ok {
				firstSeen[e.ahv] = e
				continue
			}
			if first.id != e.id {
				st = st.flag(e, st.ref(first), kindAHV, e.ahvDisplay)
			}
		}
	}
	return st
}

// matchByNameAddress flags slots whose folded surname, first name and street
// were first seen with another id.
func matchByNameAddress(st matchState, entries [][]slotEntry) matchState {
	firstSeen := make(map[string]slotEntry)
	for _, rowEntries := range entries {
		for _, e := range rowEntries {
			if e.id == "" || e.nameKey == "" || e.street == "" || st.resolved[e.key()] {
				continue
			}
			key := e.nameKey + "\x1e" + e.street
			first, ok := firstSeen[key]
			if !ok {
				firstSeen[key] = e
				continue
			}
			ref := st.ref(first)
			if ref.id == e.id || e.conflictingAHV(first) {
				continue
			}
			st = st.flag(e, ref, kindNameAddress, e.name)
		}
	}
	return st
}

// matchByParentPair compares rows on which both parents are named. The key
// is the sorted pair of name keys, so rows that list the same two parents in
// swapped slots still match.
func matchByParentPair(st matchState, entries [][]slotEntry) matchState {
	firstSeen := make(map[string][]slotEntry)
	for _, rowEntries := range entries {
		if len(rowEntries) != 2 || rowEntries[0].nameKey == "" || rowEntries[1].nameKey == "" {
			continue
		}
		names := []string{rowEntries[0].nameKey, rowEntries[1].nameKey}
		sort.Strings(names)
		key := names[0] + "\x1e" + names[1]

		prev, ok := firstSeen[key]
		if !ok {
			firstSeen[key] = rowEntries
			continue
		}

		prevIDs := make(map[string]bool, 2)
		for _, p := range prev {
			if id := st.ref(p).id; id != "" {
				prevIDs[id] = true
			}
		}
		if len(prevIDs) == 0 {
			continue
		}

		for _, e := range rowEntries {
			if e.id == "" || prevIDs[e.id] || st.resolved[e.key()] {
				continue
			}
			p := pairCounterpart(e, prev)
			ref := st.ref(p)
			if ref.id == "" || e.conflictingAHV(p) {
				continue
			}
			st = st.flag(e, ref, kindNamePair, e.name)
		}
	}
	return st
}

// pairCounterpart picks the entry of prev that names the same person as e,
// falling back to the entry in the same slot.
func pairCounterpart(e slotEntry, prev []slotEntry) slotEntry {
	for _, p := range prev {
		if p.nameKey == e.nameKey {
			return p
		}
	}
	for _, p := range prev {
		if p.slot == e.slot {
			return p
		}
	}
	return prev[0]
}

// matchByNameOnly groups the remaining slots by name alone. Two entries with
// the same name, different ids and different streets are the same person only
// if they share a phone number or the other parent on both rows has the same
// name; otherwise they are treated as namesakes and left alone.
//
// The other-parent heuristic can merge two unrelated families whose parents
// happen to share both names. There is no confidence score beyond the tier.
func matchByNameOnly(st matchState, entries [][]slotEntry) matchState {
	groups := make(map[string][]slotEntry)
	var order []string
	for _, rowEntries := range entries {
		for _, e := range rowEntries {
			if e.id == "" || e.nameKey == "" || st.resolved[e.key()] {
				continue
			}
			if _, ok := groups[e.nameKey]; !ok {
				order = append(order, e.nameKey)
			}
			groups[e.nameKey] = append(groups[e.nameKey], e)
		}
	}

	for _, name := range order {
		group := groups[name]
		for j := 1; j < len(group); j++ {
			e := group[j]
			for i := 0; i < j; i++ {
				f := group[i]
				ref := st.ref(f)
				if ref.id == e.id {
					continue
				}
				if e.street != "" && e.street == f.street {
					continue
				}
				if e.conflictingAHV(f) {
					continue
				}
				if !e.sharesPhone(f) && !e.sharesOtherParent(f) {
					continue
				}
				st = st.flag(e, ref, kindNameOnly, e.name)
				break
			}
		}
	}
	return st
}
