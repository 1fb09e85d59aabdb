package reminder_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"academy-service/internal/reminder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"},
		{2, "2nd"},
		{3, "3rd"},
		{4, "4th"},
		{10, "10th"},
		{11, "11th"},
		{12, "12th"},
		{13, "13th"},
		{20, "20th"},
		{21, "21st"},
		{22, "22nd"},
		{23, "23rd"},
		{101, "101st"},
		{111, "111th"},
		{112, "112th"},
		{121, "121st"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, reminder.Ordinal(tt.n))
		})
	}
}

func TestBuild(t *testing.T) {
	builder := reminder.NewBuilder("AITech Academy", "91", "https://api.whatsapp.com/send")
	dueDate := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)

	rem := builder.Build("Ravi Kumar", "9876543210", 2, decimal.RequireFromString("500"), dueDate)

	assert.Contains(t, rem.Message, "Greetings from AITech Academy")
	assert.Contains(t, rem.Message, "Hello Ravi Kumar")
	assert.Contains(t, rem.Message, "2nd Month Due")
	assert.Contains(t, rem.Message, "Rs.500.00")
	assert.Contains(t, rem.Message, "05 Feb 2024")

	assert.True(t, strings.HasPrefix(rem.Link, "https://api.whatsapp.com/send?phone=919876543210&text="))

	// the encoded text round-trips to the original message
	parsed, err := url.Parse(rem.Link)
	require.NoError(t, err)
	assert.Equal(t, rem.Message, parsed.Query().Get("text"))
	assert.Equal(t, "919876543210", parsed.Query().Get("phone"))
}

func TestBuildCountryCodePrefix(t *testing.T) {
	builder := reminder.NewBuilder("Academy", "44", "https://wa.me/send")

	rem := builder.Build("Jo", "7700900123", 1, decimal.RequireFromString("75.50"), time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, rem.Link, "phone=447700900123")
	assert.Contains(t, rem.Message, "1st Month Due")
	assert.Contains(t, rem.Message, "Rs.75.50")
	assert.Contains(t, rem.Message, "30 Jun 2025")
}
