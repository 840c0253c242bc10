package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finanzas/internal/core"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

func (d Dialect) driverName() string {
	return string(d)
}

// SQLRepository is the relational ledger backend. Both dialects share the
// same queries; placeholders are rewritten for Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	repo, err := open(SQLite, dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	repo.db.SetMaxOpenConns(1)
	return repo, nil
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(Postgres, dsn)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialect}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) q(query string) string {
	return rebind(r.dialect, query)
}

// rebind turns ? placeholders into $1, $2, ... for Postgres.
func rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const (
	debtColumns    = "id, name, initial_amount, current_amount, min_payment, interest_rate, due_day, color"
	incomeColumns  = "id, source, amount"
	expenseColumns = "id, name, amount, category, frequency, due_day"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(s rowScanner) (core.Debt, error) {
	var (
		d    core.Debt
		rate sql.NullFloat64
		due  sql.NullInt64
	)
	if err := s.Scan(&d.ID, &d.Name, &d.InitialAmount, &d.CurrentAmount, &d.MinPayment, &rate, &due, &d.Color); err != nil {
		return core.Debt{}, err
	}
	if rate.Valid {
		d.InterestRate = core.FloatPtr(rate.Float64)
	}
	if due.Valid {
		d.DueDay = core.IntPtr(int(due.Int64))
	}
	return d, nil
}

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e    core.Expense
		freq sql.NullString
		due  sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Name, &e.Amount, &e.Category, &freq, &due); err != nil {
		return core.Expense{}, err
	}
	if freq.Valid {
		e.Frequency = core.FrequencyPtr(core.Frequency(freq.String))
	}
	if due.Valid {
		e.DueDay = core.IntPtr(int(due.Int64))
	}
	return e, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFrequency(p *core.Frequency) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

// Snapshot implements store.SnapshotReader
func (r *SQLRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap := core.Snapshot{Debts: []core.Debt{}, Incomes: []core.Income{}, Expenses: []core.Expense{}}

	if snap.Debts, err = r.listDebts(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}

	rows, err := tx.QueryContext(ctx, "SELECT "+incomeColumns+" FROM incomes ORDER BY position")
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list incomes: %w", err)
	}
	for rows.Next() {
		var in core.Income
		if err := rows.Scan(&in.ID, &in.Source, &in.Amount); err != nil {
			rows.Close()
			return core.Snapshot{}, fmt.Errorf("scan income: %w", err)
		}
		snap.Incomes = append(snap.Incomes, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("list incomes: %w", err)
	}

	rows, err = tx.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY position")
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list expenses: %w", err)
	}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return core.Snapshot{}, fmt.Errorf("scan expense: %w", err)
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("list expenses: %w", err)
	}

	return snap, tx.Commit()
}

func (r *SQLRepository) listDebts(ctx context.Context, q queryer) ([]core.Debt, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+debtColumns+" FROM debts ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	debts := []core.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}

func (r *SQLRepository) getDebt(ctx context.Context, q queryer, id string) (core.Debt, error) {
	row := q.QueryRowContext(ctx, r.q("SELECT "+debtColumns+" FROM debts WHERE id = ?"), id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt %s: %w", id, err)
	}
	return d, nil
}

// GetDebt implements store.DebtStore
func (r *SQLRepository) GetDebt(ctx context.Context, id string) (core.Debt, error) {
	return r.getDebt(ctx, r.db, id)
}

// CreateDebt implements store.DebtStore
func (r *SQLRepository) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	if d.ID == "" {
		d.ID = core.NewID()
	}
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO debts (id, position, name, initial_amount, current_amount, min_payment, interest_rate, due_day, color)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM debts), ?, ?, ?, ?, ?, ?, ?)`),
		d.ID, d.Name, d.InitialAmount, d.CurrentAmount, d.MinPayment, nullFloat(d.InterestRate), nullInt(d.DueDay), d.Color)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	slog.InfoContext(ctx, "Debt saved",
		"dialect", r.dialect,
		"debt_id", d.ID,
		"name", d.Name,
		"balance", d.CurrentAmount)

	return d, nil
}

// UpdateDebt implements store.DebtStore
func (r *SQLRepository) UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE debts SET name = ?, initial_amount = ?, current_amount = ?, min_payment = ?,
		interest_rate = ?, due_day = ?, color = ? WHERE id = ?`),
		d.Name, d.InitialAmount, d.CurrentAmount, d.MinPayment, nullFloat(d.InterestRate), nullInt(d.DueDay), d.Color, d.ID)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt %s: %w", d.ID, err)
	}
	if err := expectRow(res, "debt", d.ID); err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

// DeleteDebt implements store.DebtStore
func (r *SQLRepository) DeleteDebt(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM debts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete debt %s: %w", id, err)
	}
	return expectRow(res, "debt", id)
}

// CreateIncome implements store.BudgetStore
func (r *SQLRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if in.ID == "" {
		in.ID = core.NewID()
	}
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO incomes (id, position, source, amount)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM incomes), ?, ?)`),
		in.ID, in.Source, in.Amount)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return in, nil
}

// DeleteIncome implements store.BudgetStore
func (r *SQLRepository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM incomes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete income %s: %w", id, err)
	}
	return expectRow(res, "income", id)
}

// CreateExpense implements store.BudgetStore
func (r *SQLRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = core.NewID()
	}
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO expenses (id, position, name, amount, category, frequency, due_day)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM expenses), ?, ?, ?, ?, ?)`),
		e.ID, e.Name, e.Amount, string(e.Category), nullFrequency(e.Frequency), nullInt(e.DueDay))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

// DeleteExpense implements store.BudgetStore
func (r *SQLRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM expenses WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return expectRow(res, "expense", id)
}

// RecordPayment implements store.PaymentStore
func (r *SQLRepository) RecordPayment(ctx context.Context, p core.Payment) (core.Debt, error) {
	if err := p.Validate(); err != nil {
		return core.Debt{}, err
	}
	if p.ID == "" {
		p.ID = core.NewID()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Debt{}, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	// Lowered in SQL: the row lock orders concurrent payments on one debt.
	res, err := tx.ExecContext(ctx, r.q(`UPDATE debts
		SET current_amount = CASE WHEN current_amount > ? THEN current_amount - ? ELSE 0 END
		WHERE id = ?`), p.Amount, p.Amount, p.DebtID)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update balance: %w", err)
	}
	if err := expectRow(res, "debt", p.DebtID); err != nil {
		return core.Debt{}, err
	}
	d, err := r.getDebt(ctx, tx, p.DebtID)
	if err != nil {
		return core.Debt{}, err
	}
	if _, err := tx.ExecContext(ctx, r.q("INSERT INTO payments (id, debt_id, amount, paid_on, recorded_by) VALUES (?, ?, ?, ?, ?)"),
		p.ID, p.DebtID, p.Amount, p.Date.String(), p.RecordedBy); err != nil {
		return core.Debt{}, fmt.Errorf("insert payment: %w", err)
	}

	var total float64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(SUM(current_amount), 0) FROM debts").Scan(&total); err != nil {
		return core.Debt{}, fmt.Errorf("total debt: %w", err)
	}
	if err := r.upsertHistory(ctx, tx, core.HistoryPoint{Period: p.Date.MonthKey(), TotalDebt: total}); err != nil {
		return core.Debt{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Debt{}, fmt.Errorf("commit payment: %w", err)
	}

	return d, nil
}

// ListPayments implements store.PaymentStore. An empty debtID lists all payments.
func (r *SQLRepository) ListPayments(ctx context.Context, debtID string) ([]core.Payment, error) {
	query := "SELECT id, debt_id, amount, paid_on, recorded_by FROM payments"
	var args []any
	if debtID != "" {
		query += " WHERE debt_id = ?"
		args = append(args, debtID)
	}
	query += " ORDER BY paid_on, created_at"

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []core.Payment{}
	for rows.Next() {
		var (
			p      core.Payment
			paidOn string
		)
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &paidOn, &p.RecordedBy); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.Date, err = core.ParseDate(paidOn); err != nil {
			return nil, fmt.Errorf("payment %s date %q: %w", p.ID, paidOn, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// History implements store.HistoryStore
func (r *SQLRepository) History(ctx context.Context) ([]core.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT period, total_debt FROM debt_history ORDER BY period")
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []core.HistoryPoint{}
	for rows.Next() {
		var h core.HistoryPoint
		if err := rows.Scan(&h.Period, &h.TotalDebt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// RecordHistory implements store.HistoryStore
func (r *SQLRepository) RecordHistory(ctx context.Context, p core.HistoryPoint) error {
	if p.Period == "" {
		return fmt.Errorf("history period: %w", core.ErrInvalidDay)
	}
	return r.upsertHistory(ctx, r.db, p)
}

func (r *SQLRepository) upsertHistory(ctx context.Context, q queryer, p core.HistoryPoint) error {
	_, err := q.ExecContext(ctx, r.q(`INSERT INTO debt_history (period, total_debt) VALUES (?, ?)
		ON CONFLICT (period) DO UPDATE SET total_debt = excluded.total_debt`),
		p.Period, core.Finite(p.TotalDebt))
	if err != nil {
		return fmt.Errorf("record history %s: %w", p.Period, err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}
