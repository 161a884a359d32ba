// Package output renders an AggregateResult into the shapes external
// collaborators consume: a persisted-shape CSV bundle, a JSON blob, and
// a human console summary.
package output

import "github.com/fuegopro/retiresim/internal/domain"

// Formatter renders one AggregateResult into a byte payload.
type Formatter interface {
	Name() string
	Format(result *domain.AggregateResult) ([]byte, error)
}

// intToString avoids importing strconv into every formatter file.
func intToString(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
