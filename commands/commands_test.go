package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedeck/config"
	"quotedeck/testhelpers"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:      config.EnvLocal,
		Currency: "USD",
		Settings: config.Settings{Company: config.Company{Name: "Northlight Productions"}},
		Export: config.Export{
			BatchWorkers: 2,
			Timeout:      30 * time.Second,
			OutputDir:    t.TempDir(),
		},
	}
}

// run executes cmd with args and returns stdout, stderr and the error.
func run(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func seedQuote(t *testing.T, app *pocketbase.PocketBase, title string) string {
	t.Helper()
	q := testhelpers.CreateTestQuote(t, app, title)
	q.Set("quote_number", "QT-2026-"+title)
	require.NoError(t, app.Save(q))
	testhelpers.CreateTestLineItem(t, app, q.Id, "logistics", "Services", "Van", 1, 2, 100, 150)
	return q.Id
}

func TestComposeCmd(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	quoteID := seedQuote(t, app, "001")
	tpl := testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	d := newDeps(app, cfg)
	_, stderr, err := run(newComposeCmd(d), tpl.Id, quoteID)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.Export.OutputDir, "QT-2026-001.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, stderr, "Wrote")
}

func TestComposeCmd_OutputAndFormat(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	quoteID := seedQuote(t, app, "002")
	tpl := testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	out := filepath.Join(t.TempDir(), "nested", "preview.html")
	_, _, err := run(newComposeCmd(newDeps(app, cfg)), tpl.Id, quoteID, "-o", out, "--format", "html")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Van")
}

func TestComposeCmd_InvalidTemplateFails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quoteID := seedQuote(t, app, "003")
	tpl := testhelpers.CreateTestTemplate(t, app, "Broken", "quote", []map[string]any{
		{"id": "items", "type": "lineItems", "width": "huge"},
	})

	_, _, err := run(newComposeCmd(newDeps(app, testConfig(t))), tpl.Id, quoteID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items/lineItems")
}

func TestComposeBatchCmd(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	for _, n := range []string{"010", "011", "012"} {
		seedQuote(t, app, n)
	}
	testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	_, _, err := run(newComposeBatchCmd(newDeps(app, cfg)), "--all", "--format", "xlsx")
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.Export.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestComposeBatchCmd_PartialFailure(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	id := seedQuote(t, app, "020")
	testhelpers.CreateTestTemplate(t, app, "Standard", "quote", testhelpers.StandardModules())

	_, _, err := run(newComposeBatchCmd(newDeps(app, cfg)), id, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	entries, _ := os.ReadDir(cfg.Export.OutputDir)
	assert.Len(t, entries, 1)
}

func TestComposeBatchCmd_NoQuotes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	_, _, err := run(newComposeBatchCmd(newDeps(app, testConfig(t))))
	require.Error(t, err)
}

const importTOML = `
name = "Imported"
kind = "quote"

[[modules]]
id = "items"
type = "lineItems"
width = "full"

[[modules]]
id = "totals"
type = "totals"
width = "half"
`

func TestTemplateImportAndCheck(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	d := newDeps(app, testConfig(t))

	path := filepath.Join(t.TempDir(), "imported.toml")
	require.NoError(t, os.WriteFile(path, []byte(importTOML), 0o644))

	stdout, _, err := run(newTemplateImportCmd(d), path, "--default")
	require.NoError(t, err)
	id := strings.TrimSpace(stdout)
	require.NotEmpty(t, id)

	tpl, err := d.store.LoadTemplate(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, tpl.IsDefault)
	assert.Len(t, tpl.Modules, 2)

	stdout, _, err = run(newTemplateCheckCmd(d), id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "row 1 (100%): items/lineItems[full,left]")
	assert.Contains(t, stdout, "row 2 (50%): totals/totals[half,left]")

	out := filepath.Join(t.TempDir(), "out.toml")
	_, _, err = run(newTemplateExportCmd(d), id, "-o", out)
	require.NoError(t, err)
	exported, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(exported), `name = "Imported"`)
}

func TestTemplateImport_Invalid(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	d := newDeps(app, testConfig(t))

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"Bad\"\nkind = \"invoice\"\n[[modules]]\nid = \"x\"\ntype = \"lineItems\"\n"), 0o644))

	_, _, err := run(newTemplateImportCmd(d), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")

	recs, err := app.FindAllRecords("document_templates")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTemplateCheck_ReportsProblems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tpl := testhelpers.CreateTestTemplate(t, app, "Broken", "invoice", []map[string]any{
		{"id": "items", "type": "lineItems"},
	})
	_, stderr, err := run(newTemplateCheckCmd(newDeps(app, testConfig(t))), tpl.Id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, stderr, "footer")
}

func TestCommands_Names(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	var names []string
	for _, c := range Commands(app, testConfig(t)) {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"compose", "compose-batch", "template-import", "template-export", "template-check"}, names)
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	assert.Same(t, l, loggerFromContext(withLogger(context.Background(), l)))

	l.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}
