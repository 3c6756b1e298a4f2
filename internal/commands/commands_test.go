package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/backend"
	"fintrack/internal/buildinfo"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// isolateEnv points every command at a fresh database with optional
// integrations switched off.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	t.Setenv("SQLITE_DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	return dbPath
}

func runFintrack(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_Version(t *testing.T) {
	out, err := runFintrack(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, buildinfo.String())
}

func TestRoot_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "worker", "migrate", "report"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestMigrate(t *testing.T) {
	isolateEnv(t)

	out, err := runFintrack(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version")

	// Re-running is a no-op.
	_, err = runFintrack(t, "migrate")
	require.NoError(t, err)
}

func TestMigrate_InvalidConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "not-a-port")

	_, err := runFintrack(t, "migrate")
	assert.ErrorContains(t, err, "invalid port")
}

func seedLedger(t *testing.T, dbPath string) string {
	t.Helper()
	ctx := context.Background()
	b, err := backend.NewFactory(log.Discard()).CreateBackend(ctx, backend.Config{
		SQLiteDBPath:     dbPath,
		CategoryCacheTTL: time.Minute,
	})
	require.NoError(t, err)
	defer b.Close()

	cats, err := b.Categories.List(ctx, core.KindExpense)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	for _, amt := range []string{"10.00", "30.00"} {
		_, err := b.Ledger.Create(ctx, core.NewTransaction{
			Amount:      decimal.RequireFromString(amt),
			Description: "groceries",
			CategoryID:  cats[0].ID,
			Kind:        core.KindExpense,
			Date:        core.NewDate(2026, 9, 15),
		})
		require.NoError(t, err)
	}

	goal, err := b.Goals.CreateGoal(ctx, core.NewGoal{Name: "Bike", TargetAmount: decimal.RequireFromString("400")})
	require.NoError(t, err)
	_, err = b.Goals.AddContribution(ctx, goal.ID, core.NewContribution{
		Amount: decimal.RequireFromString("100"),
		Date:   core.NewDate(2026, 9, 20),
	})
	require.NoError(t, err)

	return cats[0].Name
}

func TestReport(t *testing.T) {
	dbPath := isolateEnv(t)
	category := seedLedger(t, dbPath)

	out, err := runFintrack(t, "report", "--type", "expense", "--goals")
	require.NoError(t, err)

	assert.Contains(t, out, "Category")
	assert.Contains(t, out, category)
	assert.Contains(t, out, "40.00")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, "2026-09-15")
	assert.Contains(t, out, "Bike")
	assert.Contains(t, out, "25.0")
}

func TestReport_RangeExcludesEverything(t *testing.T) {
	dbPath := isolateEnv(t)
	seedLedger(t, dbPath)

	out, err := runFintrack(t, "report", "--start-date", "2026-10-01")
	require.NoError(t, err)
	assert.NotContains(t, out, "40.00")
}

func TestReport_FlagErrors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad start", []string{"report", "--start-date", "yesterday"}, "--start-date"},
		{"bad end", []string{"report", "--end-date", "2026-13-01"}, "--end-date"},
		{"inverted", []string{"report", "--start-date", "2026-02-01", "--end-date", "2026-01-01"}, "must not be after"},
		{"bad type", []string{"report", "--type", "transfer"}, "--type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runFintrack(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestWorker_BackfillWithoutBroker(t *testing.T) {
	dbPath := isolateEnv(t)
	seedLedger(t, dbPath)

	_, err := runFintrack(t, "worker")
	require.NoError(t, err)
}

func TestRenderCategoryReport(t *testing.T) {
	first := core.NewDate(2026, 1, 2)
	var buf bytes.Buffer
	renderCategoryReport(&buf, []core.CategorySummary{
		{
			Category: core.Category{Name: "Groceries", Kind: core.KindExpense},
			Summary: core.Summary{
				Count:     1,
				Total:     decimal.RequireFromString("12.5"),
				Mean:      decimal.RequireFromString("12.5"),
				Min:       decimal.RequireFromString("12.5"),
				Max:       decimal.RequireFromString("12.5"),
				FirstDate: &first,
				LastDate:  &first,
			},
		},
		{Category: core.Category{Name: "Rent", Kind: core.KindExpense}},
	})

	out := buf.String()
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "2026-01-02")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "0.00")
	assert.Contains(t, out, "-")
}
