/*
patch.go - Typed partial updates for schedule entries

PURPOSE:
  The edit dialog sends partial updates: "set these vendors", "close this
  day", "move the note". The original data layer merged arbitrary field
  bags into the entry and trusted the caller to respect the invariants.
  Here the mutable surface is an explicit EntryPatch, and Apply re-checks
  every invariant after the merge:

    - len(VendorIDs) <= VendorsPerDay is a HARD invariant (rejected)
    - duplicate vendor ids are dropped (first occurrence wins)
    - Closed == true forces VendorIDs empty (auto-corrected, since
      "close the day" is the caller's intent and the vendors are moot)
    - Type and Date, when patched, must be well-formed (rejected)

A nil pointer field means "leave unchanged"; a non-nil pointer to a zero
value is a real update (e.g. clearing the note).
*/
package rotation

// EntryPatch names exactly the mutable fields of a ScheduleEntry.
type EntryPatch struct {
	VendorIDs *[]VendorID `json:"vendorIds,omitempty"`
	Closed    *bool       `json:"closed,omitempty"`
	Locked    *bool       `json:"locked,omitempty"`
	Note      *string     `json:"note,omitempty"`
	Type      *EntryType  `json:"type,omitempty"`
	Date      *Date       `json:"date,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p EntryPatch) IsZero() bool {
	return p.VendorIDs == nil && p.Closed == nil && p.Locked == nil &&
		p.Note == nil && p.Type == nil && p.Date == nil
}

// Apply merges the patch into a copy of entry and normalizes the result
// against the schedule's staffing cap. The input entry is not modified.
func (p EntryPatch) Apply(entry ScheduleEntry, perDay VendorsPerDay) (ScheduleEntry, error) {
	if !perDay.Valid() {
		return ScheduleEntry{}, ErrInvalidVendorsPerDay
	}

	out := entry.Clone()

	if p.Type != nil {
		if !p.Type.Valid() {
			return ScheduleEntry{}, ErrInvalidEntryType
		}
		out.Type = *p.Type
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return ScheduleEntry{}, ErrInvalidDate
		}
		out.Date = *p.Date
	}
	if p.VendorIDs != nil {
		out.VendorIDs = dedupVendors(*p.VendorIDs)
	}
	if p.Closed != nil {
		out.Closed = *p.Closed
	}
	if p.Locked != nil {
		out.Locked = *p.Locked
	}
	if p.Note != nil {
		out.Note = *p.Note
	}

	// closed => no vendors. Auto-corrected, not rejected: closing a day
	// that had assignments is the normal edit flow.
	if out.Closed {
		out.VendorIDs = nil
	}

	if len(out.VendorIDs) > int(perDay) {
		return ScheduleEntry{}, &CapExceededError{
			EntryID: out.ID,
			Got:     len(out.VendorIDs),
			Max:     perDay,
		}
	}

	return out, nil
}

func dedupVendors(ids []VendorID) []VendorID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[VendorID]bool, len(ids))
	out := make([]VendorID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
