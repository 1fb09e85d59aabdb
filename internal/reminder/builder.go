package reminder

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Reminder is a fully formed fee reminder: the message text and the outbound
// WhatsApp link that delivers it. Delivery itself is external.
type Reminder struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// Builder formats reminder messages and send links. CountryCode is prefixed
// to the student's mobile number in the link ("91" for India).
type Builder struct {
	AcademyName string
	CountryCode string
	SendBaseURL string
}

func NewBuilder(academyName, countryCode, sendBaseURL string) *Builder {
	return &Builder{
		AcademyName: academyName,
		CountryCode: countryCode,
		SendBaseURL: sendBaseURL,
	}
}

// Build formats the reminder for one pending installment.
func (b *Builder) Build(studentName, mobile string, installmentNumber int, amount decimal.Decimal, dueDate time.Time) Reminder {
	msg := fmt.Sprintf(
		"Greetings from %s!\n\n"+
			"Hello %s,\n\n"+
			"This is a gentle reminder from %s regarding your academy fees. "+
			"Your payment for the %s Month Due is pending, with a due amount of Rs.%s.\n\n"+
			"The due date for this payment is %s. "+
			"We kindly request you to clear the dues within this week.\n\n"+
			"Thank you for your cooperation.\n\n"+
			"Warm regards,\n"+
			"%s Team",
		b.AcademyName,
		studentName,
		b.AcademyName,
		Ordinal(installmentNumber),
		amount.StringFixed(2),
		dueDate.Format("02 Jan 2006"),
		b.AcademyName,
	)

	link := fmt.Sprintf("%s?phone=%s%s&text=%s",
		b.SendBaseURL, b.CountryCode, mobile, url.QueryEscape(msg))

	return Reminder{Message: msg, Link: link}
}

// Ordinal converts 1 -> "1st", 2 -> "2nd", 3 -> "3rd", 11 -> "11th", etc.
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
