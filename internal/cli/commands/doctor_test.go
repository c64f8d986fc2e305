package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/viewgen/internal/cli/testutil"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{
			name:   "no checks returns 100",
			checks: nil,
			want:   100,
		},
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{RuleID: "VC01", Status: "pass", IssueCount: 0},
				{RuleID: "VT01", Status: "pass", IssueCount: 0},
			},
			want: 100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{RuleID: "VT01", Status: "warn", IssueCount: 2},
			},
			want: 90,
		},
		{
			name: "errors count double",
			checks: []HealthCheck{
				{RuleID: "VT02", Status: "error", IssueCount: 2},
			},
			want: 80,
		},
		{
			name: "many issues reduce to 0",
			checks: []HealthCheck{
				{RuleID: "VT02", Status: "error", IssueCount: 20},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func runDoctorJSON(t *testing.T) DoctorOutput {
	t.Helper()
	res, err := testutil.RunCommand(t, NewDoctorCommand())
	require.NoError(t, err)

	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out), res.Out)
	return out
}

func checkByID(t *testing.T, out DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.HealthChecks {
		if c.RuleID == id {
			return c
		}
	}
	t.Fatalf("no health check %s", id)
	return HealthCheck{}
}

func TestDoctorCommand_Healthy(t *testing.T) {
	testutil.SetupTestProject(t, "output: json", "preview:", "  port: 0")

	out := runDoctorJSON(t)

	assert.Equal(t, 100, out.Score)
	assert.Zero(t, out.IssueCount)
	assert.Empty(t, out.Recommendations)
	assert.Equal(t, 2, out.Summary.Templates)
	assert.NotEmpty(t, out.Summary.ConfigFile)
	for _, c := range out.HealthChecks {
		assert.Equal(t, "pass", c.Status, c.RuleID)
	}
}

func TestDoctorCommand_FindsProblems(t *testing.T) {
	dir := testutil.SetupTestProject(t,
		"output: json",
		"template: kanban",
		"preview:",
		"  port: 0",
		"  watch: false",
	)
	testutil.WriteTemplate(t, dir, "kanban.view.tsx", "export default () => null;\n")
	testutil.WriteTemplate(t, dir, "default.view.tsx", "export default function Broken( {\n")

	out := runDoctorJSON(t)

	assert.Equal(t, "error", checkByID(t, out, "VC02").Status)
	stray := checkByID(t, out, "VT01")
	assert.Equal(t, "warn", stray.Status)
	assert.Equal(t, []string{"kanban.view.tsx does not match any template filename"}, stray.Details)
	assert.Equal(t, "error", checkByID(t, out, "VT02").Status)
	assert.Equal(t, "pass", checkByID(t, out, "VT03").Status)

	assert.Equal(t, 1, out.Summary.Overridden)
	assert.Less(t, out.Score, 100)
	assert.NotEmpty(t, out.Recommendations)
}

func TestDoctorCommand_Markdown(t *testing.T) {
	testutil.SetupTestProject(t, "preview:", "  port: 0", "  watch: true", "templates_dir: \"\"")

	res, err := testutil.RunCommand(t, NewDoctorCommand())
	require.NoError(t, err)

	assert.Contains(t, res.Out, "# viewgen Health Report")
	assert.Contains(t, res.Out, "### Preview")
	assert.Contains(t, res.Out, "- **[WARN]** VP02: Watch target (1 issues)")
	assert.Contains(t, res.Out, "- **Templates dir**: (none)")
	testutil.AssertNoANSI(t, res.Out)
	testutil.AssertValidMarkdown(t, res.Out)
}
