package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Patchable field names shared by transactions and goals.
const (
	FieldAmount        = "amount"
	FieldDescription   = "description"
	FieldCategoryID    = "category_id"
	FieldKind          = "type"
	FieldDate          = "date"
	FieldName          = "name"
	FieldTargetAmount  = "target_amount"
	FieldTargetDate    = "target_date"
	FieldCurrentAmount = "current_amount"
)

// Optional distinguishes "not supplied" from "supplied with the zero value".
// A JSON null counts as supplied.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

// FieldUpdate is one assignment in a partial update.
type FieldUpdate struct {
	Field string
	Value any
}

type TransactionPatch struct {
	Amount      Optional[decimal.Decimal] `json:"amount"`
	Description Optional[string]          `json:"description"`
	CategoryID  Optional[string]          `json:"category_id"`
	Kind        Optional[Kind]            `json:"type"`
	Date        Optional[Date]            `json:"date"`
}

// Updates validates the supplied fields and returns them in a fixed order.
// Amounts are returned as Money.
func (p TransactionPatch) Updates() ([]FieldUpdate, error) {
	var out []FieldUpdate
	if p.Amount.Set {
		m, err := NewMoney(p.Amount.Value)
		if err != nil {
			return nil, NewValidationError(FieldAmount, err)
		}
		out = append(out, FieldUpdate{FieldAmount, m})
	}
	if p.Description.Set {
		if strings.TrimSpace(p.Description.Value) == "" {
			return nil, NewValidationError(FieldDescription, ErrEmptyDescription)
		}
		out = append(out, FieldUpdate{FieldDescription, p.Description.Value})
	}
	if p.CategoryID.Set {
		if strings.TrimSpace(p.CategoryID.Value) == "" {
			return nil, NewValidationError(FieldCategoryID, ErrEmptyCategory)
		}
		out = append(out, FieldUpdate{FieldCategoryID, p.CategoryID.Value})
	}
	if p.Kind.Set {
		if !p.Kind.Value.Valid() {
			return nil, NewValidationError(FieldKind, ErrInvalidKind)
		}
		out = append(out, FieldUpdate{FieldKind, p.Kind.Value})
	}
	if p.Date.Set {
		if err := p.Date.Value.Validate(); err != nil {
			return nil, NewValidationError(FieldDate, err)
		}
		out = append(out, FieldUpdate{FieldDate, p.Date.Value})
	}
	if len(out) == 0 {
		return nil, NewValidationError("", ErrNoFields)
	}
	return out, nil
}

// GoalPatch accepts CurrentAmount only to reject it: the balance moves
// exclusively through contributions.
type GoalPatch struct {
	Name          Optional[string]          `json:"name"`
	TargetAmount  Optional[decimal.Decimal] `json:"target_amount"`
	TargetDate    Optional[*Date]           `json:"target_date"`
	Description   Optional[*string]         `json:"description"`
	CurrentAmount Optional[decimal.Decimal] `json:"current_amount"`
}

func (p GoalPatch) Updates() ([]FieldUpdate, error) {
	if p.CurrentAmount.Set {
		return nil, NewValidationError(FieldCurrentAmount, ErrReadOnlyField)
	}
	var out []FieldUpdate
	if p.Name.Set {
		if strings.TrimSpace(p.Name.Value) == "" {
			return nil, NewValidationError(FieldName, ErrEmptyName)
		}
		out = append(out, FieldUpdate{FieldName, p.Name.Value})
	}
	if p.TargetAmount.Set {
		m, err := NewMoney(p.TargetAmount.Value)
		if err != nil {
			return nil, NewValidationError(FieldTargetAmount, err)
		}
		out = append(out, FieldUpdate{FieldTargetAmount, m})
	}
	if p.TargetDate.Set {
		if err := validTargetDate(p.TargetDate.Value); err != nil {
			return nil, NewValidationError(FieldTargetDate, err)
		}
		out = append(out, FieldUpdate{FieldTargetDate, p.TargetDate.Value})
	}
	if p.Description.Set {
		out = append(out, FieldUpdate{FieldDescription, p.Description.Value})
	}
	if len(out) == 0 {
		return nil, NewValidationError("", ErrNoFields)
	}
	return out, nil
}
