package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return errMalformedBody
	}
	return nil
}

// PageParser reads limit/offset with a configurable default limit.
type PageParser struct {
	DefaultLimit int
}

// Parse returns the page named by limit and offset. Absent values take
// defaults; non-integers are rejected.
func (p PageParser) Parse(q url.Values) (core.Page, error) {
	page := core.Page{Limit: p.DefaultLimit}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.NewValidationError("limit", errors.New("must be an integer"))
		}
		page.Limit = n
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Page{}, core.NewValidationError("offset", errors.New("must be an integer"))
		}
		page.Offset = n
	}
	return page.Normalize(), nil
}

// ParseDateRange reads start_date and end_date (YYYY-MM-DD). Either may be
// absent.
func ParseDateRange(q url.Values) (core.DateRange, error) {
	var rng core.DateRange
	for _, f := range []struct {
		name string
		dst  **core.Date
	}{
		{"start_date", &rng.From},
		{"end_date", &rng.To},
	} {
		v := strings.TrimSpace(q.Get(f.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, core.NewValidationError(f.name, errors.New("must be a date in YYYY-MM-DD format"))
		}
		*f.dst = &d
	}
	return rng, nil
}

// ParseTransactionFilter reads category_id, type and the date range.
func ParseTransactionFilter(q url.Values) (core.TransactionFilter, error) {
	rng, err := ParseDateRange(q)
	if err != nil {
		return core.TransactionFilter{}, err
	}
	return core.TransactionFilter{
		CategoryID: strings.TrimSpace(q.Get("category_id")),
		Kind:       core.Kind(strings.TrimSpace(q.Get("type"))),
		Range:      rng,
	}, nil
}
