package google

import (
	"fmt"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// transactionRow flattens a transaction into mirror column order.
func transactionRow(v core.TransactionView) []interface{} {
	return []interface{}{
		v.ID,
		v.Date.String(),
		string(v.Kind),
		v.Category.Name,
		v.Description,
		v.Amount.Round(2).InexactFloat64(),
	}
}

func headerRow() []interface{} {
	out := make([]interface{}, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

// rowRange addresses the A:F cells of the zero-based row idx.
func rowRange(sheet string, idx int) string {
	n := idx + 1
	return fmt.Sprintf("%s!A%d:F%d", sheet, n, n)
}

func indexOf(arr []string, target string) int {
	if target == "" {
		return -1
	}
	for i, v := range arr {
		if v == target {
			return i
		}
	}
	return -1
}
