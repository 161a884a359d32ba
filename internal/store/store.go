// Package store provides a SQLite-backed cache for persisted
// AggregateResult payloads, keyed by plan ID, so a caller can retrieve
// a previously computed result without re-running the simulation.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fuegopro/retiresim/internal/domain"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite-backed cache of plan simulation results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the result cache database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult persists an AggregateResult under planID, replacing any
// previously stored result for the same plan.
func (s *Store) SaveResult(planID string, result *domain.AggregateResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM aggregate_results WHERE plan_id = ?`, planID); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO aggregate_results
		(plan_id, success_rate, num_runs, lower_percentile, upper_percentile, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		planID, result.SuccessRate.String(), result.NumRuns, result.LowerPct, result.UpperPct, now,
	)
	if err != nil {
		return err
	}

	for _, pt := range result.PortfolioTimeline {
		if _, err := tx.Exec(`INSERT INTO portfolio_timeline
			(plan_id, age, p_lower, p50, p_upper) VALUES (?, ?, ?, ?, ?)`,
			planID, pt.Age, pt.PLower.String(), pt.P50.String(), pt.PUpper.String(),
		); err != nil {
			return err
		}
	}

	for _, at := range result.AccountTimeline {
		if _, err := tx.Exec(`INSERT INTO account_timeline
			(plan_id, band, account_id, account_name, age, balance) VALUES (?, ?, ?, ?, ?, ?)`,
			planID, string(at.Band), at.AccountID, at.AccountName, at.Age, at.Balance.String(),
		); err != nil {
			return err
		}
	}

	for band, rows := range result.AnnualDetail {
		for _, d := range rows {
			if _, err := tx.Exec(`INSERT INTO annual_detail
				(plan_id, band, age, tax_federal_ordinary, tax_federal_ltcg, tax_state, effective_tax_rate, shortfall)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				planID, string(band), d.Age, d.TaxFederalOrdinary.String(), d.TaxFederalLTCG.String(),
				d.TaxState.String(), d.EffectiveTaxRate.String(), d.Shortfall.String(),
			); err != nil {
				return err
			}
		}
	}

	for band, rows := range result.IncomeDetail {
		for _, d := range rows {
			if _, err := tx.Exec(`INSERT INTO income_detail
				(plan_id, band, age, source_name, amount) VALUES (?, ?, ?, ?, ?)`,
				planID, string(band), d.Age, d.SourceName, d.Amount.String(),
			); err != nil {
				return err
			}
		}
	}

	for band, rows := range result.ExpenseDetail {
		for _, d := range rows {
			if _, err := tx.Exec(`INSERT INTO expense_detail
				(plan_id, band, age, expense_name, amount) VALUES (?, ?, ?, ?, ?)`,
				planID, string(band), d.Age, d.ExpenseName, d.Amount.String(),
			); err != nil {
				return err
			}
		}
	}

	for band, rows := range result.ReturnDetail {
		for _, d := range rows {
			if _, err := tx.Exec(`INSERT INTO return_detail
				(plan_id, band, age, account_id, account_name, return_rate) VALUES (?, ?, ?, ?, ?, ?)`,
				planID, string(band), d.Age, d.AccountID, d.AccountName, d.ReturnRate.String(),
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadResult retrieves a previously persisted AggregateResult for planID.
// It returns sql.ErrNoRows if no result has been stored for that plan.
func (s *Store) LoadResult(planID string) (*domain.AggregateResult, error) {
	result := &domain.AggregateResult{
		AnnualDetail:  map[domain.Band][]domain.YearAnnualDetail{},
		IncomeDetail:  map[domain.Band][]domain.YearIncomeDetail{},
		ExpenseDetail: map[domain.Band][]domain.YearExpenseDetail{},
		ReturnDetail:  map[domain.Band][]domain.YearReturnDetail{},
	}

	var successRate string
	row := s.db.QueryRow(`SELECT success_rate, num_runs, lower_percentile, upper_percentile
		FROM aggregate_results WHERE plan_id = ?`, planID)
	if err := row.Scan(&successRate, &result.NumRuns, &result.LowerPct, &result.UpperPct); err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(successRate)
	if err != nil {
		return nil, fmt.Errorf("parsing stored success rate: %w", err)
	}
	result.SuccessRate = rate

	if err := s.loadPortfolioTimeline(planID, result); err != nil {
		return nil, err
	}
	if err := s.loadAccountTimeline(planID, result); err != nil {
		return nil, err
	}
	if err := s.loadAnnualDetail(planID, result); err != nil {
		return nil, err
	}
	if err := s.loadIncomeDetail(planID, result); err != nil {
		return nil, err
	}
	if err := s.loadExpenseDetail(planID, result); err != nil {
		return nil, err
	}
	if err := s.loadReturnDetail(planID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadPortfolioTimeline(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT age, p_lower, p50, p_upper FROM portfolio_timeline
		WHERE plan_id = ? ORDER BY age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var pt domain.PortfolioPoint
		var pLower, p50, pUpper string
		if err := rows.Scan(&pt.Age, &pLower, &p50, &pUpper); err != nil {
			return err
		}
		if pt.PLower, err = decimal.NewFromString(pLower); err != nil {
			return err
		}
		if pt.P50, err = decimal.NewFromString(p50); err != nil {
			return err
		}
		if pt.PUpper, err = decimal.NewFromString(pUpper); err != nil {
			return err
		}
		result.PortfolioTimeline = append(result.PortfolioTimeline, pt)
	}
	return rows.Err()
}

func (s *Store) loadAccountTimeline(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT band, account_id, account_name, age, balance
		FROM account_timeline WHERE plan_id = ? ORDER BY band, account_id, age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var at domain.AccountTimelinePoint
		var band, balance string
		if err := rows.Scan(&band, &at.AccountID, &at.AccountName, &at.Age, &balance); err != nil {
			return err
		}
		at.Band = domain.Band(band)
		if at.Balance, err = decimal.NewFromString(balance); err != nil {
			return err
		}
		result.AccountTimeline = append(result.AccountTimeline, at)
	}
	return rows.Err()
}

func (s *Store) loadAnnualDetail(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT band, age, tax_federal_ordinary, tax_federal_ltcg, tax_state, effective_tax_rate, shortfall
		FROM annual_detail WHERE plan_id = ? ORDER BY band, age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var band string
		var d domain.YearAnnualDetail
		var ordinary, ltcg, state, rate, shortfall string
		if err := rows.Scan(&band, &d.Age, &ordinary, &ltcg, &state, &rate, &shortfall); err != nil {
			return err
		}
		if d.TaxFederalOrdinary, err = decimal.NewFromString(ordinary); err != nil {
			return err
		}
		if d.TaxFederalLTCG, err = decimal.NewFromString(ltcg); err != nil {
			return err
		}
		if d.TaxState, err = decimal.NewFromString(state); err != nil {
			return err
		}
		if d.EffectiveTaxRate, err = decimal.NewFromString(rate); err != nil {
			return err
		}
		if d.Shortfall, err = decimal.NewFromString(shortfall); err != nil {
			return err
		}
		b := domain.Band(band)
		result.AnnualDetail[b] = append(result.AnnualDetail[b], d)
	}
	return rows.Err()
}

func (s *Store) loadIncomeDetail(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT band, age, source_name, amount
		FROM income_detail WHERE plan_id = ? ORDER BY band, age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var band string
		var d domain.YearIncomeDetail
		var amount string
		if err := rows.Scan(&band, &d.Age, &d.SourceName, &amount); err != nil {
			return err
		}
		if d.Amount, err = decimal.NewFromString(amount); err != nil {
			return err
		}
		b := domain.Band(band)
		result.IncomeDetail[b] = append(result.IncomeDetail[b], d)
	}
	return rows.Err()
}

func (s *Store) loadExpenseDetail(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT band, age, expense_name, amount
		FROM expense_detail WHERE plan_id = ? ORDER BY band, age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var band string
		var d domain.YearExpenseDetail
		var amount string
		if err := rows.Scan(&band, &d.Age, &d.ExpenseName, &amount); err != nil {
			return err
		}
		if d.Amount, err = decimal.NewFromString(amount); err != nil {
			return err
		}
		b := domain.Band(band)
		result.ExpenseDetail[b] = append(result.ExpenseDetail[b], d)
	}
	return rows.Err()
}

func (s *Store) loadReturnDetail(planID string, result *domain.AggregateResult) error {
	rows, err := s.db.Query(`SELECT band, age, account_id, account_name, return_rate
		FROM return_detail WHERE plan_id = ? ORDER BY band, age`, planID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var band string
		var d domain.YearReturnDetail
		var rate string
		if err := rows.Scan(&band, &d.Age, &d.AccountID, &d.AccountName, &rate); err != nil {
			return err
		}
		if d.ReturnRate, err = decimal.NewFromString(rate); err != nil {
			return err
		}
		b := domain.Band(band)
		result.ReturnDetail[b] = append(result.ReturnDetail[b], d)
	}
	return rows.Err()
}
