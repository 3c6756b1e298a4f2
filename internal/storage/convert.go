package storage

import (
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// TimestampLayout is fixed width so lexical order equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

var transactionColumns = map[string]string{
	core.FieldAmount:      "amount_cents",
	core.FieldDescription: "description",
	core.FieldCategoryID:  "category_id",
	core.FieldKind:        "type",
	core.FieldDate:        "date",
}

var goalColumns = map[string]string{
	core.FieldName:         "name",
	core.FieldTargetAmount: "target_amount_cents",
	core.FieldTargetDate:   "target_date",
	core.FieldDescription:  "description",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDate(d *core.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func datePtr(ns sql.NullString) (*core.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := core.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateFilter(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// assignments resolves patch fields to whitelisted columns and bindable values.
func assignments(columns map[string]string, ups []core.FieldUpdate) ([]Assignment, error) {
	out := make([]Assignment, 0, len(ups)+1)
	for _, u := range ups {
		col, ok := columns[u.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not updatable", u.Field)
		}
		v, err := bindValue(u.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", u.Field, err)
		}
		out = append(out, Assignment{Column: col, Value: v})
	}
	return out, nil
}

func bindValue(v any) (any, error) {
	switch x := v.(type) {
	case core.Money:
		return x.Cents, nil
	case core.Date:
		return x.String(), nil
	case *core.Date:
		return nullDate(x), nil
	case *string:
		return nullString(x), nil
	case core.Kind:
		return string(x), nil
	case string:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func toCategory(c Category) (core.Category, error) {
	created, err := parseTimestamp(c.CreatedAt)
	if err != nil {
		return core.Category{}, err
	}
	updated, err := parseTimestamp(c.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      core.Kind(c.Type),
		Color:     c.Color,
		Icon:      c.Icon.String,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// toTransactionView is the only place a joined transaction row becomes a
// read model.
func toTransactionView(r TransactionRow) (core.TransactionView, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.TransactionView{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.TransactionView{}, err
	}
	updated, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return core.TransactionView{}, err
	}
	return core.TransactionView{
		Transaction: core.Transaction{
			ID:          r.ID,
			Amount:      core.MoneyFromCents(r.AmountCents).Decimal(),
			Description: r.Description,
			CategoryID:  r.CategoryID,
			Kind:        core.Kind(r.Type),
			Date:        date,
			CreatedAt:   created,
			UpdatedAt:   updated,
		},
		Category: core.CategoryRef{
			ID:    r.CategoryID,
			Name:  r.CategoryName,
			Kind:  core.Kind(r.CategoryType),
			Color: r.CategoryColor,
			Icon:  r.CategoryIcon.String,
		},
	}, nil
}

func toGoal(g SavingsGoal) (core.SavingsGoal, error) {
	target, err := datePtr(g.TargetDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	created, err := parseTimestamp(g.CreatedAt)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	updated, err := parseTimestamp(g.UpdatedAt)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return core.SavingsGoal{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  core.MoneyFromCents(g.TargetAmountCents).Decimal(),
		CurrentAmount: core.MoneyFromCents(g.CurrentAmountCents).Decimal(),
		TargetDate:    target,
		Description:   stringPtr(g.Description),
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

func toContribution(c GoalContribution) (core.GoalContribution, error) {
	date, err := core.ParseDate(c.Date)
	if err != nil {
		return core.GoalContribution{}, err
	}
	created, err := parseTimestamp(c.CreatedAt)
	if err != nil {
		return core.GoalContribution{}, err
	}
	return core.GoalContribution{
		ID:          c.ID,
		GoalID:      c.GoalID,
		Amount:      core.MoneyFromCents(c.AmountCents).Decimal(),
		Date:        date,
		Description: stringPtr(c.Description),
		CreatedAt:   created,
	}, nil
}

func toAggregate(r AggregateRow) (core.Aggregate, error) {
	first, err := datePtr(r.FirstDate)
	if err != nil {
		return core.Aggregate{}, err
	}
	last, err := datePtr(r.LastDate)
	if err != nil {
		return core.Aggregate{}, err
	}
	return core.Aggregate{
		Count:     r.Count,
		SumCents:  r.SumCents,
		MinCents:  r.MinCents,
		MaxCents:  r.MaxCents,
		FirstDate: first,
		LastDate:  last,
	}, nil
}
