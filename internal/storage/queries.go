package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const listCategories = `
SELECT id, name, type, color, icon, created_at, updated_at
FROM categories
WHERE (?1 = '' OR type = ?1)
ORDER BY name, id
`

func (q *Queries) ListCategories(ctx context.Context, kind string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Type, &i.Color, &i.Icon, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCategory = `
SELECT id, name, type, color, icon, created_at, updated_at
FROM categories
WHERE id = ?1
`

func (q *Queries) GetCategory(ctx context.Context, id string) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Type, &i.Color, &i.Icon, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createTransaction = `
INSERT INTO transactions (id, amount_cents, description, category_id, type, date, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8)
`

type CreateTransactionParams struct {
	ID          string
	AmountCents int64
	Description string
	CategoryID  string
	Type        string
	Date        string
	CreatedAt   string
	UpdatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.AmountCents, arg.Description, arg.CategoryID,
		arg.Type, arg.Date, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const transactionRowColumns = `
t.id, t.amount_cents, t.description, t.category_id, t.type, t.date, t.created_at, t.updated_at,
c.name, c.type, c.color, c.icon
FROM transactions t
JOIN categories c ON c.id = t.category_id
`

const getTransaction = `SELECT` + transactionRowColumns + `WHERE t.id = ?1`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	return scanTransactionRow(row)
}

const listTransactions = `SELECT` + transactionRowColumns + `
WHERE (?1 = '' OR t.category_id = ?1)
  AND (?2 = '' OR t.type = ?2)
  AND (?3 = '' OR t.date >= ?3)
  AND (?4 = '' OR t.date <= ?4)
ORDER BY t.date DESC, t.created_at DESC
LIMIT ?5 OFFSET ?6
`

// ListTransactionsParams uses empty strings for absent filters.
type ListTransactionsParams struct {
	CategoryID string
	Type       string
	DateFrom   string
	DateTo     string
	Limit      int64
	Offset     int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.CategoryID, arg.Type, arg.DateFrom, arg.DateTo, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		i, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?1`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const aggregateTransactions = `
SELECT COUNT(*),
       COALESCE(SUM(amount_cents), 0),
       COALESCE(MIN(amount_cents), 0),
       COALESCE(MAX(amount_cents), 0),
       MIN(date),
       MAX(date)
FROM transactions
WHERE category_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
`

type AggregateParams struct {
	OwnerID  string
	DateFrom string
	DateTo   string
}

func (q *Queries) AggregateTransactions(ctx context.Context, arg AggregateParams) (AggregateRow, error) {
	row := q.db.QueryRowContext(ctx, aggregateTransactions, arg.OwnerID, arg.DateFrom, arg.DateTo)
	return scanAggregate(row)
}

const sumTransactionsByType = `
SELECT type, COALESCE(SUM(amount_cents), 0)
FROM transactions
WHERE (?1 = '' OR date >= ?1)
  AND (?2 = '' OR date <= ?2)
GROUP BY type
`

func (q *Queries) SumTransactionsByType(ctx context.Context, dateFrom, dateTo string) ([]KindTotal, error) {
	rows, err := q.db.QueryContext(ctx, sumTransactionsByType, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KindTotal
	for rows.Next() {
		var i KindTotal
		if err := rows.Scan(&i.Type, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createGoal = `
INSERT INTO savings_goals (id, name, target_amount_cents, current_amount_cents, target_date, description, created_at, updated_at)
VALUES (?1, ?2, ?3, 0, ?4, ?5, ?6, ?7)
`

type CreateGoalParams struct {
	ID                string
	Name              string
	TargetAmountCents int64
	TargetDate        sql.NullString
	Description       sql.NullString
	CreatedAt         string
	UpdatedAt         string
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID, arg.Name, arg.TargetAmountCents, arg.TargetDate, arg.Description, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const goalSelectColumns = `id, name, target_amount_cents, current_amount_cents, target_date, description, created_at, updated_at`

const getGoal = `SELECT ` + goalSelectColumns + ` FROM savings_goals WHERE id = ?1`

func (q *Queries) GetGoal(ctx context.Context, id string) (SavingsGoal, error) {
	return scanGoal(q.db.QueryRowContext(ctx, getGoal, id))
}

const listGoals = `SELECT ` + goalSelectColumns + ` FROM savings_goals ORDER BY created_at DESC, id`

func (q *Queries) ListGoals(ctx context.Context) ([]SavingsGoal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SavingsGoal
	for rows.Next() {
		i, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteGoal = `DELETE FROM savings_goals WHERE id = ?1`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const incrementGoalBalance = `
UPDATE savings_goals
SET current_amount_cents = current_amount_cents + ?2, updated_at = ?3
WHERE id = ?1
`

func (q *Queries) IncrementGoalBalance(ctx context.Context, id string, deltaCents int64, updatedAt string) (int64, error) {
	res, err := q.db.ExecContext(ctx, incrementGoalBalance, id, deltaCents, updatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const setGoalBalance = `
UPDATE savings_goals
SET current_amount_cents = ?2, updated_at = ?3
WHERE id = ?1
`

func (q *Queries) SetGoalBalance(ctx context.Context, id string, cents int64, updatedAt string) (int64, error) {
	res, err := q.db.ExecContext(ctx, setGoalBalance, id, cents, updatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const sumGoalBalances = `SELECT COALESCE(SUM(current_amount_cents), 0) FROM savings_goals`

func (q *Queries) SumGoalBalances(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumGoalBalances).Scan(&total)
	return total, err
}

const createContribution = `
INSERT INTO goal_contributions (id, goal_id, amount_cents, date, description, created_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?6)
`

type CreateContributionParams struct {
	ID          string
	GoalID      string
	AmountCents int64
	Date        string
	Description sql.NullString
	CreatedAt   string
}

func (q *Queries) CreateContribution(ctx context.Context, arg CreateContributionParams) error {
	_, err := q.db.ExecContext(ctx, createContribution,
		arg.ID, arg.GoalID, arg.AmountCents, arg.Date, arg.Description, arg.CreatedAt)
	return err
}

const contributionSelectColumns = `id, goal_id, amount_cents, date, description, created_at`

const getContribution = `SELECT ` + contributionSelectColumns + ` FROM goal_contributions WHERE id = ?1 AND goal_id = ?2`

func (q *Queries) GetContribution(ctx context.Context, goalID, id string) (GoalContribution, error) {
	return scanContribution(q.db.QueryRowContext(ctx, getContribution, id, goalID))
}

const listContributions = `SELECT ` + contributionSelectColumns + `
FROM goal_contributions
WHERE goal_id = ?1
ORDER BY date DESC, created_at DESC
LIMIT ?2 OFFSET ?3
`

func (q *Queries) ListContributions(ctx context.Context, goalID string, limit, offset int64) ([]GoalContribution, error) {
	rows, err := q.db.QueryContext(ctx, listContributions, goalID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GoalContribution
	for rows.Next() {
		i, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteContribution = `DELETE FROM goal_contributions WHERE id = ?1 AND goal_id = ?2`

func (q *Queries) DeleteContribution(ctx context.Context, goalID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteContribution, id, goalID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteContributionsByGoal = `DELETE FROM goal_contributions WHERE goal_id = ?1`

func (q *Queries) DeleteContributionsByGoal(ctx context.Context, goalID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteContributionsByGoal, goalID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const aggregateContributions = `
SELECT COUNT(*),
       COALESCE(SUM(amount_cents), 0),
       COALESCE(MIN(amount_cents), 0),
       COALESCE(MAX(amount_cents), 0),
       MIN(date),
       MAX(date)
FROM goal_contributions
WHERE goal_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
`

func (q *Queries) AggregateContributions(ctx context.Context, arg AggregateParams) (AggregateRow, error) {
	row := q.db.QueryRowContext(ctx, aggregateContributions, arg.OwnerID, arg.DateFrom, arg.DateTo)
	return scanAggregate(row)
}

// Assignment is one column = value pair of a dynamic UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// UpdateByID issues UPDATE table SET ... WHERE id = ?. Table and column
// names must come from the fixed whitelists in this package; every value
// is bound as a parameter.
func (q *Queries) UpdateByID(ctx context.Context, table, id string, sets []Assignment) (int64, error) {
	if len(sets) == 0 {
		return 0, fmt.Errorf("update %s: no assignments", table)
	}
	var b strings.Builder
	args := make([]any, 0, len(sets)+1)
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, s := range sets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.Column)
		b.WriteString(" = ?")
		args = append(args, s.Value)
	}
	b.WriteString(" WHERE id = ?")
	args = append(args, id)

	res, err := q.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransactionRow(s scanner) (TransactionRow, error) {
	var i TransactionRow
	err := s.Scan(
		&i.ID, &i.AmountCents, &i.Description, &i.CategoryID, &i.Type, &i.Date, &i.CreatedAt, &i.UpdatedAt,
		&i.CategoryName, &i.CategoryType, &i.CategoryColor, &i.CategoryIcon,
	)
	return i, err
}

func scanGoal(s scanner) (SavingsGoal, error) {
	var i SavingsGoal
	err := s.Scan(&i.ID, &i.Name, &i.TargetAmountCents, &i.CurrentAmountCents,
		&i.TargetDate, &i.Description, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func scanContribution(s scanner) (GoalContribution, error) {
	var i GoalContribution
	err := s.Scan(&i.ID, &i.GoalID, &i.AmountCents, &i.Date, &i.Description, &i.CreatedAt)
	return i, err
}

func scanAggregate(s scanner) (AggregateRow, error) {
	var i AggregateRow
	err := s.Scan(&i.Count, &i.SumCents, &i.MinCents, &i.MaxCents, &i.FirstDate, &i.LastDate)
	return i, err
}
