package student

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID                  int             `bun:"id,pk,autoincrement" json:"id"`
	Name                string          `bun:"name,notnull" json:"name" validate:"required"`
	Mobile              string          `bun:"mobile,notnull" json:"mobile" validate:"required"`
	Course              string          `bun:"course,notnull" json:"course" validate:"required"`
	RegistrationDate    time.Time       `bun:"registration_date,notnull,type:date" json:"registrationDate"`
	JoiningDate         time.Time       `bun:"joining_date,notnull,type:date" json:"joiningDate"`
	RegistrationFee     decimal.Decimal `bun:"registration_fee,notnull,type:numeric(10,2)" json:"registrationFee"`
	RegistrationFeePaid bool            `bun:"registration_fee_paid,notnull,default:false" json:"registrationFeePaid"`
	TotalDueMonths      int             `bun:"total_due_months,notnull,default:0" json:"totalDueMonths" validate:"min=0"`
}

// Due is one monthly installment owed by a student. CollectedBy and
// PaymentMethod are set when the due is marked paid and cleared when it is
// unmarked.
type Due struct {
	bun.BaseModel `bun:"table:dues,alias:d"`

	ID            int64           `bun:"id,pk,autoincrement" json:"id"`
	StudentID     int             `bun:"student_id,notnull" json:"studentId"`
	DueDate       time.Time       `bun:"due_date,notnull,type:date" json:"dueDate"`
	Amount        decimal.Decimal `bun:"amount,notnull,type:numeric(10,2)" json:"amount"`
	Paid          bool            `bun:"paid,notnull,default:false" json:"paid"`
	CollectedBy   string          `bun:"collected_by" json:"collectedBy,omitempty"`
	PaymentMethod string          `bun:"payment_method" json:"paymentMethod,omitempty"`

	Student *Student `bun:"rel:belongs-to,join:student_id=id" json:"-"`
}
