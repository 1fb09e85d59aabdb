package student_test

import (
	"testing"
	"time"

	"academy-service/internal/student"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func makeDue(t *testing.T, id int64, date string, amount string, paid bool) student.Due {
	t.Helper()
	return student.Due{
		ID:        id,
		StudentID: 1,
		DueDate:   mustDate(t, date),
		Amount:    decimal.RequireFromString(amount),
		Paid:      paid,
	}
}

func TestReconcile(t *testing.T) {
	st := &student.Student{
		ID:          1,
		Name:        "Asha",
		JoiningDate: mustDate(t, "2024-01-31"),
	}

	t.Run("NoOpWhenCountMatchesAndNoEdits", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", true),
			makeDue(t, 2, "2024-02-29", "500", false),
		}

		actions := student.Reconcile(st, dues, 2, nil)
		assert.True(t, actions.Empty())

		// and again, to cover idempotence on repeated identical calls
		actions = student.Reconcile(st, dues, 2, student.Edits{})
		assert.True(t, actions.Empty())
	})

	t.Run("GrowDefaultsToJoiningDatePlusMonths", func(t *testing.T) {
		actions := student.Reconcile(st, nil, 3, nil)

		require.Len(t, actions.Create, 3)
		assert.Empty(t, actions.Update)
		assert.Empty(t, actions.Delete)

		// Jan 31 clamps to the shorter months (2024 is a leap year)
		assert.Equal(t, mustDate(t, "2024-01-31"), actions.Create[0].DueDate)
		assert.Equal(t, mustDate(t, "2024-02-29"), actions.Create[1].DueDate)
		assert.Equal(t, mustDate(t, "2024-03-31"), actions.Create[2].DueDate)

		for _, d := range actions.Create {
			assert.False(t, d.Paid)
			assert.True(t, d.Amount.IsZero())
			assert.Equal(t, 1, d.StudentID)
		}
	})

	t.Run("GrowClampsAcrossYearBoundary", func(t *testing.T) {
		late := &student.Student{ID: 1, JoiningDate: mustDate(t, "2023-10-31")}

		actions := student.Reconcile(late, nil, 5, nil)

		require.Len(t, actions.Create, 5)
		assert.Equal(t, mustDate(t, "2023-11-30"), actions.Create[1].DueDate)
		assert.Equal(t, mustDate(t, "2023-12-31"), actions.Create[2].DueDate)
		assert.Equal(t, mustDate(t, "2024-01-31"), actions.Create[3].DueDate)
		assert.Equal(t, mustDate(t, "2024-02-29"), actions.Create[4].DueDate)
	})

	t.Run("GrowUsesSuppliedEdits", func(t *testing.T) {
		existing := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
		}
		edits := student.Edits{
			1: {DueDate: "2024-03-15", Amount: "750.50"},
			2: {DueDate: "not-a-date", Amount: "oops"},
		}

		actions := student.Reconcile(st, existing, 3, edits)

		require.Len(t, actions.Create, 2)
		assert.Equal(t, mustDate(t, "2024-03-15"), actions.Create[0].DueDate)
		assert.Equal(t, "750.5", actions.Create[0].Amount.String())

		// malformed edits fall back to the computed defaults
		assert.Equal(t, mustDate(t, "2024-03-31"), actions.Create[1].DueDate)
		assert.True(t, actions.Create[1].Amount.IsZero())
	})

	t.Run("ShrinkRemovesUnpaidFromEnd", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
			makeDue(t, 2, "2024-02-29", "500", false),
			makeDue(t, 3, "2024-03-31", "500", false),
			makeDue(t, 4, "2024-04-30", "500", false),
		}

		actions := student.Reconcile(st, dues, 2, nil)

		assert.ElementsMatch(t, []int64{4, 3}, actions.Delete)
		assert.Empty(t, actions.Create)
		assert.Empty(t, actions.Update)
	})

	t.Run("ShrinkSkipsPaidDues", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
			makeDue(t, 2, "2024-02-29", "500", true),
			makeDue(t, 3, "2024-03-31", "500", true),
			makeDue(t, 4, "2024-04-30", "500", false),
		}

		actions := student.Reconcile(st, dues, 2, nil)

		assert.ElementsMatch(t, []int64{4, 1}, actions.Delete)
	})

	t.Run("PaidDuesFormAFloor", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", true),
			makeDue(t, 2, "2024-02-29", "500", true),
			makeDue(t, 3, "2024-03-31", "500", true),
		}

		actions := student.Reconcile(st, dues, 1, nil)

		// nothing to delete: paid dues are never touched
		assert.True(t, actions.Empty())
	})

	t.Run("ZeroTotalRemovesAllUnpaid", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
			makeDue(t, 2, "2024-02-29", "500", false),
		}

		actions := student.Reconcile(st, dues, 0, nil)

		assert.ElementsMatch(t, []int64{1, 2}, actions.Delete)
		assert.Empty(t, actions.Create)
	})

	t.Run("PaidFirstInstallmentSurvivesShrinkToOne", func(t *testing.T) {
		// joins 2024-01-31 with three months, first marked paid, then the
		// schedule is cut down to a single installment
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "1000", true),
			makeDue(t, 2, "2024-02-29", "1000", false),
			makeDue(t, 3, "2024-03-31", "1000", false),
		}

		actions := student.Reconcile(st, dues, 1, nil)

		assert.ElementsMatch(t, []int64{3, 2}, actions.Delete)
		assert.Empty(t, actions.Create)
		assert.Empty(t, actions.Update)
	})

	t.Run("InPlaceEditUpdatesUnpaidDue", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
			makeDue(t, 2, "2024-02-29", "500", false),
		}
		edits := student.Edits{
			1: {DueDate: "2024-03-05", Amount: "600"},
		}

		actions := student.Reconcile(st, dues, 2, edits)

		require.Len(t, actions.Update, 1)
		assert.Equal(t, int64(2), actions.Update[0].ID)
		assert.Equal(t, mustDate(t, "2024-03-05"), actions.Update[0].DueDate)
		assert.Equal(t, "600", actions.Update[0].Amount.String())
	})

	t.Run("EditsNeverTouchPaidDues", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", true),
			makeDue(t, 2, "2024-02-29", "500", false),
		}
		edits := student.Edits{
			0: {DueDate: "2024-06-01", Amount: "1"},
		}

		actions := student.Reconcile(st, dues, 2, edits)

		assert.True(t, actions.Empty())
	})

	t.Run("MalformedEditsAreIgnored", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
		}
		edits := student.Edits{
			0: {DueDate: "31/01/2024", Amount: "-100"},
		}

		actions := student.Reconcile(st, dues, 1, edits)

		assert.True(t, actions.Empty())
	})

	t.Run("EditsBeyondRequestedTotalAreIgnored", func(t *testing.T) {
		dues := []student.Due{
			makeDue(t, 1, "2024-01-31", "500", false),
			makeDue(t, 2, "2024-02-29", "500", false),
			makeDue(t, 3, "2024-03-31", "500", false),
		}
		edits := student.Edits{
			2: {Amount: "999"},
		}

		actions := student.Reconcile(st, dues, 2, edits)

		assert.ElementsMatch(t, []int64{3}, actions.Delete)
		assert.Empty(t, actions.Update)
	})
}

func TestInitialSchedule(t *testing.T) {
	st := &student.Student{
		ID:             7,
		JoiningDate:    mustDate(t, "2024-05-15"),
		TotalDueMonths: 2,
	}

	dues := student.InitialSchedule(st, student.Edits{0: {Amount: "1200"}})

	require.Len(t, dues, 2)
	assert.Equal(t, mustDate(t, "2024-05-15"), dues[0].DueDate)
	assert.Equal(t, "1200", dues[0].Amount.String())
	assert.Equal(t, mustDate(t, "2024-06-15"), dues[1].DueDate)
	assert.True(t, dues[1].Amount.IsZero())
}

func TestParseRequestedTotal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback int
		want     int
	}{
		{"ValidNumber", "5", 3, 5},
		{"Zero", "0", 3, 0},
		{"Blank", "", 3, 3},
		{"Whitespace", "   ", 3, 3},
		{"Malformed", "abc", 3, 3},
		{"Negative", "-2", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, student.ParseRequestedTotal(tt.raw, tt.fallback))
		})
	}
}
