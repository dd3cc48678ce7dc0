package invoice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// Invoice numbers follow the INV-YYYYMMDD-NNN storage contract: a zero-padded
// three-digit counter scoped to the calendar day.
const (
	numberPrefix     = "INV-"
	numberDayFormat  = "20060102"
	maxDailySequence = 999
)

// ErrSequenceExhausted is returned when a day's counter would pass 999.
// Widening the counter would break the fixed-width number contract, so
// allocation fails loudly instead.
var ErrSequenceExhausted = errors.New("daily invoice number sequence exhausted")

// DayPrefix returns the number prefix shared by all invoices of the given
// day, e.g. "INV-20260901-".
func DayPrefix(day time.Time) string {
	return numberPrefix + day.Format(numberDayFormat) + "-"
}

// NextNumber returns the invoice number following last for the given day.
// last is the highest existing number carrying the day's prefix, or "" when
// the day has no invoices yet, which starts the counter at 001. It must be
// called inside the same transaction that creates the invoice, so two
// concurrent creations cannot derive the same counter.
func NextNumber(day time.Time, last string) (string, error) {
	next := 1
	if last != "" {
		seq, err := strconv.Atoi(last[len(last)-3:])
		if err != nil {
			return "", errors.Wrapf(err, "malformed invoice number %q", last)
		}
		next = seq + 1
	}
	if next > maxDailySequence {
		return "", ErrSequenceExhausted
	}
	return fmt.Sprintf("%s%03d", DayPrefix(day), next), nil
}
