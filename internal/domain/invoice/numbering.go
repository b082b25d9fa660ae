package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// NumberPrefix starts every generated invoice number
	NumberPrefix = "INV"
	// RecentNumbersWindow is how many of the newest invoice numbers are scanned
	// for the current month's highest sequence
	RecentNumbersWindow = 20
	// MaxSequence is the largest 4-digit monthly sequence
	MaxSequence = 9999
	// DuplicateNumberAttempts bounds the unique-number search when duplicating
	DuplicateNumberAttempts = 3
)

var sequentialNumberPattern = regexp.MustCompile(`^INV(\d{6})(\d{4})$`)

// ErrSequenceExhausted is returned when the month already used sequence 9999
var ErrSequenceExhausted = fmt.Errorf("monthly invoice sequence exhausted (max %d)", MaxSequence)

// YearMonth returns the YYYYMM stamp used in sequential numbers
func YearMonth(now time.Time) string {
	return now.Format("200601")
}

// NextSequentialNumber returns INV+YYYYMM+NNNN where NNNN is one more than the
// highest sequence found among recent numbers of the same month.
// Numbers of other months or of another shape are ignored.
func NextSequentialNumber(now time.Time, recent []string) (string, error) {
	yearMonth := YearMonth(now)
	highest := 0
	for _, number := range recent {
		m := sequentialNumberPattern.FindStringSubmatch(number)
		if m == nil || m[1] != yearMonth {
			continue
		}
		seq, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	if highest >= MaxSequence {
		return "", ErrSequenceExhausted
	}
	return fmt.Sprintf("%s%s%04d", NumberPrefix, yearMonth, highest+1), nil
}

// FallbackNumber returns INV+YYYYMMDD+RRR with a 3-digit random suffix.
// It is best-effort and may collide.
func FallbackNumber(now time.Time, random int) string {
	if random < 0 {
		random = -random
	}
	return fmt.Sprintf("%s%s%03d", NumberPrefix, now.Format("20060102"), random%1000)
}
