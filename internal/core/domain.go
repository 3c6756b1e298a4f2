package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date wire and storage format.
const DateLayout = "2006-01-02"

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind classifies categories and transactions.
	Kind string

	Date struct {
		time.Time
	}

	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Kind      Kind      `json:"type"`
		Color     string    `json:"color"`
		Icon      string    `json:"icon,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// CategoryRef is the category metadata embedded in every transaction read.
	CategoryRef struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Kind  Kind   `json:"type"`
		Color string `json:"color"`
		Icon  string `json:"icon,omitempty"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CategoryID  string          `json:"category_id"`
		Kind        Kind            `json:"type"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// TransactionView is a transaction joined with its category.
	TransactionView struct {
		Transaction
		Category CategoryRef `json:"category"`
	}

	NewTransaction struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CategoryID  string          `json:"category_id"`
		Kind        Kind            `json:"type"`
		Date        Date            `json:"date"`
	}

	// SavingsGoal carries a cached running balance. CurrentAmount is written
	// only when contributions are applied or reversed.
	SavingsGoal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"target_amount"`
		CurrentAmount decimal.Decimal `json:"current_amount"`
		TargetDate    *Date           `json:"target_date,omitempty"`
		Description   *string         `json:"description,omitempty"`
		CreatedAt     time.Time       `json:"created_at"`
		UpdatedAt     time.Time       `json:"updated_at"`
	}

	NewGoal struct {
		Name         string          `json:"name"`
		TargetAmount decimal.Decimal `json:"target_amount"`
		TargetDate   *Date           `json:"target_date,omitempty"`
		Description  *string         `json:"description,omitempty"`
	}

	GoalContribution struct {
		ID          string          `json:"id"`
		GoalID      string          `json:"goal_id"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description *string         `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	NewContribution struct {
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description *string         `json:"description,omitempty"`
	}
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind returns the Kind named by s or a validation error.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", NewValidationError("type", ErrInvalidKind)
	}
	return k, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name, Kind: c.Kind, Color: c.Color, Icon: c.Icon}
}

func (n NewTransaction) Validate() error {
	if _, err := NewMoney(n.Amount); err != nil {
		return NewValidationError("amount", err)
	}
	if strings.TrimSpace(n.Description) == "" {
		return NewValidationError("description", ErrEmptyDescription)
	}
	if strings.TrimSpace(n.CategoryID) == "" {
		return NewValidationError("category_id", ErrEmptyCategory)
	}
	if !n.Kind.Valid() {
		return NewValidationError("type", ErrInvalidKind)
	}
	if err := n.Date.Validate(); err != nil {
		return NewValidationError("date", err)
	}
	return nil
}

func (t Transaction) Entry() Entry {
	return Entry{Amount: t.Amount, Date: t.Date}
}

func (n NewGoal) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return NewValidationError("name", ErrEmptyName)
	}
	if _, err := NewMoney(n.TargetAmount); err != nil {
		return NewValidationError("target_amount", err)
	}
	if err := validTargetDate(n.TargetDate); err != nil {
		return NewValidationError("target_date", err)
	}
	return nil
}

// validTargetDate accepts nil (no target date) but not an empty string,
// which decodes to a non-nil zero Date.
func validTargetDate(d *Date) error {
	if d != nil && d.IsZero() {
		return ErrEmptyTargetDate
	}
	return nil
}

// Progress returns the share of the target reached, in percent.
func (g SavingsGoal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

func (n NewContribution) Validate() error {
	if _, err := NewMoney(n.Amount); err != nil {
		return NewValidationError("amount", err)
	}
	if err := n.Date.Validate(); err != nil {
		return NewValidationError("date", err)
	}
	return nil
}

func (c GoalContribution) Entry() Entry {
	return Entry{Amount: c.Amount, Date: c.Date}
}
