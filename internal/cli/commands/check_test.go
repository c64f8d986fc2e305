package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/viewgen/internal/cli/testutil"
)

func runCheckJSON(t *testing.T, args ...string) (CheckOutput, error) {
	t.Helper()
	res, err := testutil.RunCommand(t, NewCheckCommand(), args...)
	var out CheckOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out), res.Out)
	return out, err
}

func TestCheckCommand_BuiltinsPass(t *testing.T) {
	testutil.SetupTestProject(t)

	res, err := testutil.RunCommand(t, NewCheckCommand())
	require.NoError(t, err)

	assert.Contains(t, res.Out, "## default")
	assert.Contains(t, res.Out, "## customers")
	assert.Contains(t, res.Out, "- **Status**: pass")
	assert.Contains(t, res.Out, "- **Source**: built-in")
	assert.Contains(t, res.Out, "0 of 2 templates failed")
	testutil.AssertValidMarkdown(t, res.Out)
}

func TestCheckCommand_BrokenOverlayFails(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json")
	testutil.WriteTemplate(t, dir, "customers.view.tsx", "export default function Broken( {\n")

	out, err := runCheckJSON(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckFailed))

	require.Len(t, out.Results, 2)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, "pass", out.Results[0].Status)

	broken := out.Results[1]
	assert.Equal(t, "customers", broken.Template)
	assert.Equal(t, "fail", broken.Status)
	assert.NotEmpty(t, broken.Diagnostics)
	assert.NotEqual(t, "built-in", broken.Source)
}

func TestCheckCommand_TemplateSelection(t *testing.T) {
	tests := []struct {
		name   string
		config []string
		args   []string
		want   []string
	}{
		{
			name: "all by default",
			want: []string{"default", "customers"},
		},
		{
			name: "args resolve aliases and drop duplicates",
			args: []string{"users", "master-detail", "elements"},
			want: []string{"customers", "default"},
		},
		{
			name:   "config list",
			config: []string{"check:", "  templates: [customers]"},
			want:   []string{"customers"},
		},
		{
			name:   "args beat config",
			config: []string{"check:", "  templates: [customers]"},
			args:   []string{"default"},
			want:   []string{"default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.SetupTestProject(t, append([]string{"output: json"}, tt.config...)...)

			out, err := runCheckJSON(t, tt.args...)
			require.NoError(t, err)

			got := make([]string, 0, len(out.Results))
			for _, r := range out.Results {
				got = append(got, r.Template)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckCommand_UnknownTemplate(t *testing.T) {
	testutil.SetupTestProject(t)

	_, err := testutil.RunCommand(t, NewCheckCommand(), "kanban")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCheckFailed))
}
