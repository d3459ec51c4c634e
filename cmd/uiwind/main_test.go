package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/config"
	"github.com/gnana997/uiwind/pkg/scanner"
)

const fixtureConfig = `content:
  - "src/**/*.html"
output: dist/app.css
css_config: theme.css
log:
  level: warn
`

const fixtureCSS = `@theme {
  --color-brand-500: #3366ff;
}

@utility content-auto {
  content-visibility: auto;
}
`

// writeProject lays out a small project and returns the config path.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if _, ok := files[config.DefaultFile]; !ok {
		files[config.DefaultFile] = fixtureConfig
	}
	if _, ok := files["theme.css"]; !ok {
		files["theme.css"] = fixtureCSS
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.Join(dir, config.DefaultFile)
}

func executeCommand(args ...string) (string, string, error) {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildCommand_WritesConfiguredOutput(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		"src/index.html": `<div class="p-4 flex bg-brand-500 content-auto"></div>`,
	})

	_, _, err := executeCommand("build", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "dist", "app.css"))
	require.NoError(t, err)
	css := string(data)

	assert.Contains(t, css, "box-sizing: border-box", "preflight is on by default")
	assert.Contains(t, css, ".p-4 { padding: 1rem; }")
	assert.Contains(t, css, ".flex { display: flex; }")
	assert.Contains(t, css, ".bg-brand-500 { background-color: #3366ff; }")
	assert.Contains(t, css, ".content-auto { content-visibility: auto; }")
	assert.NotContains(t, css, ".div")
}

func TestBuildCommand_StdoutWithThemeVars(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "content: [\"**/*.html\"]\npreflight: false\nlog:\n  level: error\n",
		"index.html":       `<p class="m-2">`,
	})

	stdout, _, err := executeCommand("build", "-c", cfgPath, "-o", "-", "--theme-vars")
	require.NoError(t, err)
	assert.Contains(t, stdout, ":root {")
	assert.Contains(t, stdout, ".dark {")
	assert.Contains(t, stdout, ".m-2 { margin: 0.5rem; }")
	assert.NotContains(t, stdout, "box-sizing")
}

func TestBuildCommand_Stats(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		"src/a.html": `<p class="p-4">`,
		"src/b.html": `<p class="p-4 m-2">`,
	})

	_, stderr, err := executeCommand("build", "-c", cfgPath, "-o", filepath.Join(t.TempDir(), "out.css"), "--stats")
	require.NoError(t, err)

	start := strings.Index(stderr, "{")
	require.GreaterOrEqual(t, start, 0, "stats JSON on stderr")
	var stats compileResult
	require.NoError(t, json.Unmarshal([]byte(stderr[start:]), &stats))
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Rules)
	require.NotNil(t, stats.Shake)
	assert.Greater(t, stats.Shake.UnusedRules, 0)
}

func TestBuildCommand_InvalidConfig(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "dark_mode:\n  strategy: sometimes\n",
	})

	_, _, err := executeCommand("build", "-c", cfgPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuildCommand_MissingCSSConfig(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "css_config: nope.css\n",
	})

	_, _, err := executeCommand("build", "-c", cfgPath)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestThemeCommand(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{})

	stdout, _, err := executeCommand("theme", "-c", cfgPath, "--strategy", "media")
	require.NoError(t, err)
	assert.Contains(t, stdout, "--color-brand-500: #3366ff;")
	assert.Contains(t, stdout, "@media (prefers-color-scheme: dark)")

	stdout, _, err = executeCommand("theme", "-c", cfgPath, "--mode", "light")
	require.NoError(t, err)
	assert.NotContains(t, stdout, ".dark")

	_, _, err = executeCommand("theme", "-c", cfgPath, "--strategy", "never")
	assert.Error(t, err)

	_, _, err = executeCommand("theme", "-c", cfgPath, "--mode", "dusk")
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{})

	stdout, _, err := executeCommand("parse", "-c", cfgPath, "--json", "md:!p-4", "unknown-thing")
	require.NoError(t, err)

	var reports []classReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, []string{"md"}, reports[0].Variants)
	assert.Equal(t, "p-4", reports[0].Utility)
	assert.True(t, reports[0].Important)
	assert.True(t, reports[0].Matched)
	assert.Contains(t, reports[0].CSS, "padding: 1rem !important;")

	assert.False(t, reports[1].Matched)

	stdout, _, err = executeCommand("parse", "-c", cfgPath, "hover:bg-brand-500/50")
	require.NoError(t, err)
	assert.Contains(t, stdout, "variants:  hover")
	assert.Contains(t, stdout, "opacity 50")

	_, _, err = executeCommand("parse", "-c", cfgPath)
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		"src/index.html": `<div class="hover:p-4 flex">`,
	})

	stdout, _, err := executeCommand("analyze", "-c", cfgPath, "--json")
	require.NoError(t, err)

	var report analysisReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 2, report.Generated)
	assert.Equal(t, []string{"hover"}, report.Usage.Variants)
	assert.Greater(t, report.Shake.TotalRules, report.Shake.UsedRules)

	stdout, _, err = executeCommand("analyze", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files scanned:     1")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "uiwind "+version)
}

func TestWatchSession(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "content: [\"src/**/*.html\"]\npreflight: false\nlog:\n  level: error\n",
		"src/a.html":       `<p class="p-4">`,
	})
	dir := filepath.Dir(cfgPath)

	p, err := openProject(&rootFlags{configPath: cfgPath}, &bytes.Buffer{})
	require.NoError(t, err)
	defer p.Close()

	out := filepath.Join(dir, "dist", "watch.css")
	session := newWatchSession(p, &bytes.Buffer{}, out, false)
	defer session.Close()

	require.NoError(t, session.Initial(t.Context()))
	css := readFile(t, out)
	assert.Contains(t, css, ".p-4 { padding: 1rem; }")
	assert.NotContains(t, css, ".m-2")

	added := filepath.Join(dir, "src", "b.html")
	require.NoError(t, os.WriteFile(added, []byte(`<p class="m-2 p-4">`), 0o644))
	session.Apply([]scanner.Event{{Path: added}})

	css = readFile(t, out)
	assert.Contains(t, css, ".m-2 { margin: 0.5rem; }")
	assert.Equal(t, 1, strings.Count(css, ".p-4 {"), "rules are delivered once")

	require.NoError(t, os.Remove(added))
	session.Apply([]scanner.Event{{Path: added, Removed: true}})
	assert.Contains(t, readFile(t, out), ".m-2", "delivered rules stay for the session")

	assert.Equal(t, 3, session.Rebuilds())
	assert.Equal(t, int64(2), session.Stats().Delivered)
}

func TestWatchSession_DeliversEverySpelling(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "content: [\"*.html\"]\npreflight: false\nlog:\n  level: error\n",
		"a.html":           `<p class="!p-2 p-2!">`,
	})

	p, err := openProject(&rootFlags{configPath: cfgPath}, &bytes.Buffer{})
	require.NoError(t, err)
	defer p.Close()

	var buf bytes.Buffer
	session := newWatchSession(p, &buf, "-", false)
	defer session.Close()

	require.NoError(t, session.Initial(t.Context()))
	watched := buf.String()
	assert.Contains(t, watched, `.\!p-2 { padding: 0.5rem !important; }`)
	assert.Contains(t, watched, `.p-2\! { padding: 0.5rem !important; }`)
	assert.EqualValues(t, 2, session.Stats().Delivered)

	built, _, err := executeCommand("build", "-c", cfgPath, "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, built, watched)
}

func TestWatchSession_Virtualized(t *testing.T) {
	cfgPath := writeProject(t, map[string]string{
		config.DefaultFile: "content: [\"*.html\"]\npreflight: false\ndelivery:\n  virtualize: true\n  classes_per_node: 1\nlog:\n  level: error\n",
		"a.html":           `<p class="p-4 m-2 flex">`,
	})

	p, err := openProject(&rootFlags{configPath: cfgPath}, &bytes.Buffer{})
	require.NoError(t, err)
	defer p.Close()

	var buf bytes.Buffer
	session := newWatchSession(p, &buf, "-", false)
	defer session.Close()

	require.NoError(t, session.Initial(t.Context()))
	assert.Contains(t, buf.String(), ".flex { display: flex; }")
	assert.Equal(t, 3, session.Stats().SinkEntries)
	assert.Equal(t, 3, session.Stats().StyleNodes)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
