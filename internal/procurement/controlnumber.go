package procurement

import (
	"fmt"
	"strconv"
	"strings"
)

// Control number prefixes.
const (
	PrefixIRR = "IRR"
	PrefixRPQ = "RPQ"
)

// NextControlNumber returns {prefix}-{year}-{NNNN} following the highest
// sequence already used for that prefix and year. Unparseable suffixes are
// ignored and numbering restarts at 0001 each year. Uniqueness only holds once
// the backend has persisted the record.
func NextControlNumber(prefix string, year int, existing []string) string {
	return ControlNumbers(prefix, year, existing, 1)[0]
}

// ControlNumbers returns n consecutive numbers after the highest existing one.
func ControlNumbers(prefix string, year int, existing []string, n int) []string {
	head := fmt.Sprintf("%s-%d-", prefix, year)
	highest := 0
	for _, cn := range existing {
		seq, ok := parseSequence(cn, head)
		if ok && seq > highest {
			highest = seq
		}
	}
	if n < 1 {
		n = 1
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%04d", head, highest+i+1)
	}
	return out
}

func parseSequence(cn, head string) (int, bool) {
	if !strings.HasPrefix(cn, head) {
		return 0, false
	}
	tail := cn[len(head):]
	if tail == "" {
		return 0, false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(tail)
	if err != nil {
		return 0, false
	}
	return seq, true
}
