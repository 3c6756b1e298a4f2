package storage

import (
	"database/sql"
)

type Category struct {
	ID        string
	Name      string
	Type      string
	Color     string
	Icon      sql.NullString
	CreatedAt string
	UpdatedAt string
}

type Transaction struct {
	ID          string
	AmountCents int64
	Description string
	CategoryID  string
	Type        string
	Date        string
	CreatedAt   string
	UpdatedAt   string
}

// TransactionRow is a transaction joined with its category.
type TransactionRow struct {
	Transaction
	CategoryName  string
	CategoryType  string
	CategoryColor string
	CategoryIcon  sql.NullString
}

type SavingsGoal struct {
	ID                 string
	Name               string
	TargetAmountCents  int64
	CurrentAmountCents int64
	TargetDate         sql.NullString
	Description        sql.NullString
	CreatedAt          string
	UpdatedAt          string
}

type GoalContribution struct {
	ID          string
	GoalID      string
	AmountCents int64
	Date        string
	Description sql.NullString
	CreatedAt   string
}

type AggregateRow struct {
	Count     int64
	SumCents  int64
	MinCents  int64
	MaxCents  int64
	FirstDate sql.NullString
	LastDate  sql.NullString
}

type KindTotal struct {
	Type       string
	TotalCents int64
}
