package core

// DefaultPageLimit applies when a caller does not supply a limit.
const DefaultPageLimit = 50

// Page bounds a result window. A zero Limit means DefaultPageLimit; a
// negative Limit is passed through and storage reads it as "no limit".
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Normalize() Page {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// DateRange is inclusive on both ends; nil bounds are open.
type DateRange struct {
	From *Date
	To   *Date
}

func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(r.To.Time) {
		return NewValidationError("start_date", ErrInvalidRange)
	}
	return nil
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) DateRange {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return DateRange{From: &first, To: &last}
}

// TransactionFilter narrows Ledger listings. Zero values are ignored.
type TransactionFilter struct {
	CategoryID string
	Kind       Kind
	Range      DateRange
}

func (f TransactionFilter) Validate() error {
	if f.Kind != "" && !f.Kind.Valid() {
		return NewValidationError(FieldKind, ErrInvalidKind)
	}
	return f.Range.Validate()
}
