package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, description, amount, date, category, type, payment_method, reference_id, created_at`

// FinanceRepository is the append-only cash-flow ledger; it has no update or delete.
type FinanceRepository interface {
	CreateTransaction(executor SQLExecutor, tx *models.FinancialTransaction) error
	GetTransactions(filters models.TransactionFilters) ([]models.FinancialTransaction, int, error)
	ListAllTransactions(executor SQLExecutor) ([]models.FinancialTransaction, error)
	SumByCategory(from, to time.Time) ([]models.CategoryTotal, error)
}

type financeRepository struct {
	db *sql.DB
}

// NewFinanceRepository creates a new instance of FinanceRepository.
func NewFinanceRepository(db *sql.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func scanTransaction(row scanner, extra ...interface{}) (*models.FinancialTransaction, error) {
	var t models.FinancialTransaction
	dest := []interface{}{&t.ID, &t.Description, &t.Amount, &t.Date, &t.Category, &t.Type, &t.PaymentMethod, &t.ReferenceID, &t.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *financeRepository) CreateTransaction(executor SQLExecutor, t *models.FinancialTransaction) error {
	query := `INSERT INTO financial_transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Date.IsZero() {
		t.Date = t.CreatedAt
	}
	_, err := executor.Exec(query,
		t.ID, t.Description, t.Amount, t.Date.Format(dateLayout), t.Category, t.Type, t.PaymentMethod, t.ReferenceID, t.CreatedAt,
	)
	if err != nil {
		return classify(err, "creating financial transaction")
	}
	return nil
}

func (r *financeRepository) GetTransactions(filters models.TransactionFilters) ([]models.FinancialTransaction, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + transactionColumns + `, COUNT(*) OVER() AS total_count FROM financial_transactions`)

	var conditions []string
	var args []interface{}
	argCount := 1
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, filters.DateFrom.Format(dateLayout))
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, filters.DateTo.Format(dateLayout))
		argCount++
	}
	if filters.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY date DESC, created_at DESC")
	limit, args := pageClause(filters.Page, filters.PageSize, argCount, args)
	qb.WriteString(limit)

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying financial transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.FinancialTransaction{}
	total := 0
	for rows.Next() {
		t, err := scanTransaction(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning financial transaction: %v", ErrDatabaseError, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating financial transactions: %v", ErrDatabaseError, err)
	}
	return out, total, nil
}

func (r *financeRepository) ListAllTransactions(executor SQLExecutor) ([]models.FinancialTransaction, error) {
	rows, err := executor.Query(`SELECT ` + transactionColumns + ` FROM financial_transactions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing financial transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.FinancialTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning financial transaction: %v", ErrDatabaseError, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating financial transactions: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// SumByCategory totals the ledger per category and type within [from, to].
func (r *financeRepository) SumByCategory(from, to time.Time) ([]models.CategoryTotal, error) {
	query := `SELECT category, type, COALESCE(SUM(amount), 0)
	          FROM financial_transactions
	          WHERE date >= $1 AND date <= $2
	          GROUP BY category, type
	          ORDER BY type, category`
	rows, err := r.db.Query(query, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("%w: summing financial transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		var total decimal.Decimal
		if err := rows.Scan(&ct.Category, &ct.Type, &total); err != nil {
			return nil, fmt.Errorf("%w: scanning category total: %v", ErrDatabaseError, err)
		}
		ct.Total = total
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category totals: %v", ErrDatabaseError, err)
	}
	return totals, nil
}
