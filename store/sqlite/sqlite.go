/*
Package sqlite provides a SQLite-backed implementation of ledger.Storage.

PURPOSE:
  Production persistence for loan records and their payment rows. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  loans:    One row per loan (borrower metadata, terms)
  payments: One row per payment, FK to loans with ON DELETE CASCADE

STORAGE CONVENTIONS:
  - Money and rates stored as TEXT and parsed with shopspring/decimal;
    REAL would reintroduce the float rounding the engine exists to avoid
  - Calendar dates stored as 'YYYY-MM-DD' TEXT
  - Record timestamps stored as RFC3339 TEXT

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
)

// Store implements ledger.Storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		borrower_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		principal TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		penalty_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		paid_on TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Payment history is always fetched per loan, in insertion order
	CREATE INDEX IF NOT EXISTS idx_payments_loan
		ON payments(loan_id, created_at, id);

	CREATE INDEX IF NOT EXISTS idx_loans_created
		ON loans(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOANS
// =============================================================================

func (s *Store) CreateLoan(ctx context.Context, loan *ledger.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, borrower_name, phone, principal, interest_rate, penalty_rate, start_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID, loan.BorrowerName, loan.Phone,
		loan.Principal.String(), loan.InterestRate.String(), loan.PenaltyRate.String(),
		loan.StartDate.String(),
		loan.CreatedAt.UTC().Format(time.RFC3339Nano),
		loan.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	for _, p := range loan.Payments {
		if err := insertPayment(ctx, tx, loan.ID, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetLoan(ctx context.Context, id string) (*ledger.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, borrower_name, phone, principal, interest_rate, penalty_rate, start_date, created_at, updated_at
		FROM loans WHERE id = ?`, id)

	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	payments, err := s.loadPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Payments = payments
	return loan, nil
}

func (s *Store) ListLoans(ctx context.Context) ([]*ledger.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower_name, phone, principal, interest_rate, penalty_rate, start_date, created_at, updated_at
		FROM loans ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*ledger.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		payments, err := s.loadPayments(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		loan.Payments = payments
	}
	return loans, nil
}

func (s *Store) UpdateLoan(ctx context.Context, loan *ledger.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE loans
		SET borrower_name = ?, phone = ?, principal = ?, interest_rate = ?, penalty_rate = ?, start_date = ?, updated_at = ?
		WHERE id = ?`,
		loan.BorrowerName, loan.Phone,
		loan.Principal.String(), loan.InterestRate.String(), loan.PenaltyRate.String(),
		loan.StartDate.String(),
		loan.UpdatedAt.UTC().Format(time.RFC3339Nano),
		loan.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, ledger.ErrLoanNotFound)
}

func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ledger.ErrLoanNotFound)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) AddPayment(ctx context.Context, loanID string, entry ledger.PaymentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertPayment(ctx, tx, loanID, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdatePayment(ctx context.Context, loanID string, entry ledger.PaymentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET amount = ?, paid_on = ?
		WHERE id = ? AND loan_id = ?`,
		entry.Amount.String(), entry.Date.String(), entry.ID, loanID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, ledger.ErrPaymentNotFound)
}

func (s *Store) DeletePayment(ctx context.Context, loanID string, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM payments WHERE id = ? AND loan_id = ?`, paymentID, loanID)
	if err != nil {
		return err
	}
	return requireAffected(res, ledger.ErrPaymentNotFound)
}

func (s *Store) loadPayments(ctx context.Context, loanID string) ([]ledger.PaymentEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, paid_on, created_at
		FROM payments WHERE loan_id = ?
		ORDER BY created_at, id`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.PaymentEntry
	for rows.Next() {
		var (
			entry                     ledger.PaymentEntry
			amount, paidOn, createdAt string
		)
		if err := rows.Scan(&entry.ID, &amount, &paidOn, &createdAt); err != nil {
			return nil, err
		}
		if entry.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt payment amount %q: %w", amount, err)
		}
		if entry.Date, err = accrual.ParseDate(paidOn); err != nil {
			return nil, fmt.Errorf("corrupt payment date %q: %w", paidOn, err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("corrupt payment timestamp %q: %w", createdAt, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scannable interface {
	Scan(dest ...any) error
}

func scanLoan(row scannable) (*ledger.Loan, error) {
	var (
		loan                            ledger.Loan
		principal, interest, penalty    string
		startDate, createdAt, updatedAt string
	)
	err := row.Scan(&loan.ID, &loan.BorrowerName, &loan.Phone,
		&principal, &interest, &penalty, &startDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if loan.Principal, err = decimal.NewFromString(principal); err != nil {
		return nil, fmt.Errorf("corrupt principal %q: %w", principal, err)
	}
	if loan.InterestRate, err = decimal.NewFromString(interest); err != nil {
		return nil, fmt.Errorf("corrupt interest rate %q: %w", interest, err)
	}
	if loan.PenaltyRate, err = decimal.NewFromString(penalty); err != nil {
		return nil, fmt.Errorf("corrupt penalty rate %q: %w", penalty, err)
	}
	if loan.StartDate, err = accrual.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("corrupt start date %q: %w", startDate, err)
	}
	if loan.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	if loan.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}
	return &loan, nil
}

func insertPayment(ctx context.Context, tx *sql.Tx, loanID string, entry ledger.PaymentEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, loan_id, amount, paid_on, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, loanID, entry.Amount.String(), entry.Date.String(),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
