package student

import "github.com/shopspring/decimal"

// Actions is the set of storage changes produced by Reconcile. The
// repository applies the whole set inside one transaction so a failure
// partway through leaves the prior schedule intact.
type Actions struct {
	Create []Due
	Update []Due
	Delete []int64
}

func (a Actions) Empty() bool {
	return len(a.Create) == 0 && len(a.Update) == 0 && len(a.Delete) == 0
}

// Reconcile adjusts a student's due schedule toward requestedTotal without
// touching paid installments:
//
//   - when the schedule shrinks, unpaid dues are removed from the end of the
//     date-ordered list; paid dues are skipped, so the final count can stay
//     above requestedTotal (the paid floor)
//   - when the schedule grows, one unpaid due is appended per missing slot,
//     defaulting to the joining date advanced by the slot index in months
//     and a zero amount unless the edit for that slot supplies valid values
//   - edits for surviving unpaid dues below requestedTotal are applied in
//     place; edits addressed at paid dues are ignored
//
// dues must be ordered ascending by due date. Reconcile never mutates its
// inputs and is a no-op when the count already matches and no edits parse.
func Reconcile(st *Student, dues []Due, requestedTotal int, edits Edits) Actions {
	var actions Actions

	deleted := make(map[int64]bool)
	if requestedTotal < len(dues) {
		diff := len(dues) - requestedTotal
		for i := len(dues) - 1; i >= 0 && diff > 0; i-- {
			if dues[i].Paid {
				continue
			}
			actions.Delete = append(actions.Delete, dues[i].ID)
			deleted[dues[i].ID] = true
			diff--
		}
	}

	survivors := make([]Due, 0, len(dues))
	for _, d := range dues {
		if !deleted[d.ID] {
			survivors = append(survivors, d)
		}
	}

	for i := len(survivors); i < requestedTotal; i++ {
		d := Due{
			StudentID: st.ID,
			Amount:    decimal.Zero,
		}
		if dt, ok := parseDateField(edits[i].DueDate); ok {
			d.DueDate = dt
		} else {
			d.DueDate = addMonths(st.JoiningDate, i)
		}
		if amt, ok := parseAmountField(edits[i].Amount); ok {
			d.Amount = amt
		}
		actions.Create = append(actions.Create, d)
	}

	for i, d := range survivors {
		if i >= requestedTotal || d.Paid {
			continue
		}
		edit, ok := edits[i]
		if !ok {
			continue
		}
		changed := false
		if dt, ok := parseDateField(edit.DueDate); ok {
			d.DueDate = dt
			changed = true
		}
		if amt, ok := parseAmountField(edit.Amount); ok {
			d.Amount = amt
			changed = true
		}
		if changed {
			actions.Update = append(actions.Update, d)
		}
	}

	return actions
}

// InitialSchedule builds the dues created alongside a new student: one
// unpaid due per month, dated from the joining date and defaulted to a zero
// amount unless an edit supplies values for that slot.
func InitialSchedule(st *Student, edits Edits) []Due {
	actions := Reconcile(st, nil, st.TotalDueMonths, edits)
	return actions.Create
}
