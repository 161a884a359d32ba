package calculation

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"
)

// HistoricalReturnService owns a fixed monthly-return vector and the
// regime pools derived from it. Once Load succeeds the service is
// read-only and safe to share across concurrent runs.
type HistoricalReturnService struct {
	// multipliers[i] = 1 + monthly return, ordered oldest -> newest.
	multipliers []decimal.Decimal

	bearStarts []int
	bullStarts []int

	// pBullToBull and pBearToBear are maximum-likelihood stay-probabilities
	// estimated from non-overlapping annual windows.
	pBullToBull decimal.Decimal
	pBearToBear decimal.Decimal

	loaded bool
}

// NewHistoricalReturnService returns an empty, unloaded service.
func NewHistoricalReturnService() *HistoricalReturnService {
	return &HistoricalReturnService{}
}

// Load parses a line-oriented monthly-percentage-change table.
// Unparseable rows are skipped with a
// counted warning through logger; zero rows parsed is a fatal error.
// Rows may arrive newest-first or oldest-first; the order is not
// detected from the data: when newestFirst is true Load reverses the
// parsed rows so the stored vector is oldest-first.
func (h *HistoricalReturnService) Load(r io.Reader, newestFirst bool, logger Logger) error {
	if logger == nil {
		logger = NopLogger{}
	}
	scanner := bufio.NewScanner(r)
	var pct []decimal.Decimal
	skipped := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, "\t", " "))
		if len(fields) == 0 {
			continue
		}
		raw := strings.TrimSuffix(fields[len(fields)-1], "%")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			skipped++
			continue
		}
		pct = append(pct, decimal.NewFromFloat(v/100.0))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading historical data: %w", err)
	}
	if skipped > 0 {
		logger.Warnf("historical data: skipped %d unparseable rows", skipped)
	}
	if len(pct) == 0 {
		return fmt.Errorf("historical data: zero rows parsed, fatal")
	}
	if newestFirst {
		for i, j := 0, len(pct)-1; i < j; i, j = i+1, j-1 {
			pct[i], pct[j] = pct[j], pct[i]
		}
	}
	multipliers := make([]decimal.Decimal, len(pct))
	for i, p := range pct {
		multipliers[i] = decimal.NewFromInt(1).Add(p)
	}
	h.multipliers = multipliers
	h.precompute()
	h.loaded = true
	return nil
}

// precompute builds the bear/bull window-start pools and the Markov
// stay-probabilities.
func (h *HistoricalReturnService) precompute() {
	n := len(h.multipliers)
	h.bearStarts = nil
	h.bullStarts = nil
	if n < 12 {
		return
	}
	windowReturn := func(start int) decimal.Decimal {
		product := decimal.NewFromInt(1)
		for i := start; i < start+12; i++ {
			product = product.Mul(h.multipliers[i])
		}
		return product.Sub(decimal.NewFromInt(1))
	}
	for start := 0; start <= n-12; start++ {
		if windowReturn(start).IsNegative() {
			h.bearStarts = append(h.bearStarts, start)
		} else {
			h.bullStarts = append(h.bullStarts, start)
		}
	}

	// Non-overlapping annual windows, skipping forward 12 months each
	// time, to tally Markov transition counts.
	type regime int
	const (
		bear regime = iota
		bull
	)
	var regimes []regime
	for start := 0; start+12 <= n; start += 12 {
		if windowReturn(start).IsNegative() {
			regimes = append(regimes, bear)
		} else {
			regimes = append(regimes, bull)
		}
	}

	var bullCount, bullToBull, bearCount, bearToBear int
	for i := 0; i+1 < len(regimes); i++ {
		switch regimes[i] {
		case bull:
			bullCount++
			if regimes[i+1] == bull {
				bullToBull++
			}
		case bear:
			bearCount++
			if regimes[i+1] == bear {
				bearToBear++
			}
		}
	}

	h.pBullToBull = decimal.NewFromFloat(0.5)
	h.pBearToBear = decimal.NewFromFloat(0.5)
	if bullCount > 0 {
		h.pBullToBull = decimal.NewFromInt(int64(bullToBull)).Div(decimal.NewFromInt(int64(bullCount)))
	}
	if bearCount > 0 {
		h.pBearToBear = decimal.NewFromInt(int64(bearToBear)).Div(decimal.NewFromInt(int64(bearCount)))
	}
}

// IsLoaded reports whether Load has succeeded.
func (h *HistoricalReturnService) IsLoaded() bool { return h.loaded }

// compoundedWindowReturn returns the annual multiplier for the 12-month
// window starting at the given index.
func (h *HistoricalReturnService) compoundedWindowReturn(start int) decimal.Decimal {
	product := decimal.NewFromInt(1)
	for i := start; i < start+12; i++ {
		product = product.Mul(h.multipliers[i])
	}
	return product
}

// SampleAnnualReturns returns nYears compounded annual growth multipliers
// (each is `1 + annual return`, so a value below 1 denotes a loss).
func (h *HistoricalReturnService) SampleAnnualReturns(nYears int, rng *rand.Rand, firstYearRegime domain.Regime) ([]decimal.Decimal, error) {
	if !h.loaded {
		return nil, fmt.Errorf("historical return service: not loaded")
	}
	switch firstYearRegime {
	case domain.RegimeBear, domain.RegimeBull, domain.RegimeNone, "":
	default:
		return nil, fmt.Errorf("historical return service: invalid regime %q", firstYearRegime)
	}

	n := len(h.multipliers)
	maxStart := n - 12
	if maxStart < 0 {
		return nil, fmt.Errorf("historical return service: fewer than 12 months loaded")
	}

	out := make([]decimal.Decimal, nYears)

	if firstYearRegime == domain.RegimeNone || firstYearRegime == "" {
		for y := 0; y < nYears; y++ {
			start := rng.Intn(maxStart + 1)
			out[y] = h.compoundedWindowReturn(start)
		}
		return out, nil
	}

	currentRegime := firstYearRegime
	for y := 0; y < nYears; y++ {
		var pool []int
		if currentRegime == domain.RegimeBear {
			pool = h.bearStarts
		} else {
			pool = h.bullStarts
		}
		if len(pool) == 0 {
			// Degenerate data set: fall back to the other pool rather
			// than panic, since the precomputation guarantees at least
			// one pool is non-empty whenever maxStart >= 0.
			if currentRegime == domain.RegimeBear {
				pool = h.bullStarts
			} else {
				pool = h.bearStarts
			}
		}
		start := pool[rng.Intn(len(pool))]
		out[y] = h.compoundedWindowReturn(start)

		stay := h.pBullToBull
		if currentRegime == domain.RegimeBear {
			stay = h.pBearToBear
		}
		if rng.Float64() >= stay.InexactFloat64() {
			if currentRegime == domain.RegimeBear {
				currentRegime = domain.RegimeBull
			} else {
				currentRegime = domain.RegimeBear
			}
		}
	}
	return out, nil
}
