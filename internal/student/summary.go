package student

import (
	"academy-service/internal/reminder"

	"github.com/shopspring/decimal"
)

// Summary aggregates a student's payment state for the admin listing.
// InstallmentNumber is the 1-based position of NextUnpaid in the
// date-ordered schedule; both are zero values when everything is paid.
type Summary struct {
	CompletedCount    int                `json:"completedCount"`
	TotalPaid         decimal.Decimal    `json:"totalPaid"`
	TotalOutstanding  decimal.Decimal    `json:"totalOutstanding"`
	NextUnpaid        *Due               `json:"nextUnpaid,omitempty"`
	InstallmentNumber int                `json:"installmentNumber,omitempty"`
	Reminder          *reminder.Reminder `json:"reminder,omitempty"`
}

// Summarize computes paid/unpaid totals and locates the next unpaid
// installment. dues must be ordered ascending by due date; ties keep their
// input order. Amount sums use exact decimal arithmetic. When builder is
// non-nil and an unpaid due exists, a reminder message and link are
// attached.
func Summarize(st *Student, dues []Due, builder *reminder.Builder) Summary {
	summary := Summary{
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	for i := range dues {
		d := &dues[i]
		if d.Paid {
			summary.CompletedCount++
			summary.TotalPaid = summary.TotalPaid.Add(d.Amount)
			continue
		}
		summary.TotalOutstanding = summary.TotalOutstanding.Add(d.Amount)
		if summary.NextUnpaid == nil {
			due := *d
			summary.NextUnpaid = &due
			summary.InstallmentNumber = i + 1
		}
	}

	if summary.NextUnpaid != nil && builder != nil {
		r := builder.Build(st.Name, st.Mobile, summary.InstallmentNumber, summary.NextUnpaid.Amount, summary.NextUnpaid.DueDate)
		summary.Reminder = &r
	}

	return summary
}
