package commands

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/viewgen/internal/cli/config"
	"github.com/leapstack-labs/viewgen/internal/cli/output"
	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the viewgen setup for common problems",
		Long: `Inspect the configuration, the templates directory and the preview settings,
and report anything that would make init, check or preview misbehave.

The report includes:
- A summary of the active configuration
- Health checks grouped by area (Config, Templates, Preview)
- A health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  viewgen doctor

  # Output as JSON
  viewgen doctor --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SetupSummary  `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SetupSummary describes the active configuration.
type SetupSummary struct {
	ConfigFile   string `json:"config_file,omitempty"`
	TemplatesDir string `json:"templates_dir,omitempty"`
	Templates    int    `json:"templates"`
	Overridden   int    `json:"overridden"`
	PreviewPort  int    `json:"preview_port"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// doctorEnv is what the rules inspect.
type doctorEnv struct {
	cfg        *config.Config
	store      *scaffold.Store
	configFile string
}

type doctorRule struct {
	ID       string
	Name     string
	Group    string
	Severity string // "warn" or "error"
	Run      func(env *doctorEnv) []string
	Fix      string
}

var doctorRules = []doctorRule{
	{
		ID:       "VC01",
		Name:     "Config file",
		Group:    "config",
		Severity: "warn",
		Run: func(env *doctorEnv) []string {
			if env.configFile == "" {
				return []string{"no viewgen.yaml found; using defaults and environment"}
			}
			return nil
		},
		Fix: "Add a viewgen.yaml at the project root to pin the template and templates directory",
	},
	{
		ID:       "VC02",
		Name:     "Default template",
		Group:    "config",
		Severity: "error",
		Run: func(env *doctorEnv) []string {
			if strings.TrimSpace(env.cfg.Template) == "" {
				return nil
			}
			if _, err := env.store.Select(env.cfg.Template); err != nil {
				return []string{err.Error()}
			}
			return nil
		},
		Fix: "Set template to one of the options listed by 'viewgen templates'",
	},
	{
		ID:       "VT01",
		Name:     "Unknown view files",
		Group:    "templates",
		Severity: "warn",
		Run:      strayViewFiles,
		Fix:      "Rename view files in the templates directory to a template filename, or remove them",
	},
	{
		ID:       "VT02",
		Name:     "Template syntax",
		Group:    "templates",
		Severity: "error",
		Run: func(env *doctorEnv) []string {
			var issues []string
			for _, id := range env.store.IDs() {
				diags, err := env.store.Check(id)
				if err != nil {
					issues = append(issues, err.Error())
					continue
				}
				for _, d := range diags {
					issues = append(issues, d.String())
				}
			}
			return issues
		},
		Fix: "Run 'viewgen check' and fix the reported TSX errors",
	},
	{
		ID:       "VT03",
		Name:     "Example data",
		Group:    "templates",
		Severity: "error",
		Run: func(_ *doctorEnv) []string {
			var issues []string
			for _, v := range example.Views() {
				if err := v.Validate(); err != nil {
					issues = append(issues, v.TemplateID+": "+err.Error())
				}
			}
			return issues
		},
	},
	{
		ID:       "VP01",
		Name:     "Preview port",
		Group:    "preview",
		Severity: "warn",
		Run: func(env *doctorEnv) []string {
			port := env.cfg.Preview.Port
			if port == 0 {
				return nil
			}
			ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
			if err != nil {
				return []string{fmt.Sprintf("port %d is not available: %v", port, err)}
			}
			_ = ln.Close()
			return nil
		},
		Fix: "Pick a free port with preview.port or --port",
	},
	{
		ID:       "VP02",
		Name:     "Watch target",
		Group:    "preview",
		Severity: "warn",
		Run: func(env *doctorEnv) []string {
			if env.cfg.Preview.Watch && env.store.Overlay() == "" {
				return []string{"preview.watch is set but no templates directory is configured"}
			}
			return nil
		},
		Fix: "Set templates_dir so preview --watch has files to watch",
	},
}

// strayViewFiles lists .tsx files in the templates directory that do not
// replace any template.
func strayViewFiles(env *doctorEnv) []string {
	dir := env.store.Overlay()
	if dir == "" {
		return nil
	}
	known := map[string]bool{}
	for _, d := range env.store.List() {
		known[d.Filename] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{err.Error()}
	}
	var issues []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".tsx" || known[e.Name()] {
			continue
		}
		issues = append(issues, e.Name()+" does not match any template filename")
	}
	return issues
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	env := &doctorEnv{
		cfg:        cmdCtx.Cfg,
		store:      cmdCtx.Store,
		configFile: config.GetConfigFileUsed(),
	}
	doctorOutput := buildDoctorOutput(env)

	// Render based on mode
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, doctorOutput)
	default:
		renderDoctorText(r, doctorOutput)
	}
	return nil
}

func buildDoctorOutput(env *doctorEnv) *DoctorOutput {
	summary := SetupSummary{
		ConfigFile:   env.configFile,
		TemplatesDir: env.store.Overlay(),
		Templates:    len(env.store.IDs()),
		PreviewPort:  env.cfg.Preview.Port,
	}
	for _, id := range env.store.IDs() {
		if env.store.Overridden(id) {
			summary.Overridden++
		}
	}

	checks := make([]HealthCheck, 0, len(doctorRules))
	issueCount := 0
	var recommendations []string
	for _, rule := range doctorRules {
		details := rule.Run(env)
		status := "pass"
		if len(details) > 0 {
			status = rule.Severity
			if rule.Fix != "" {
				recommendations = append(recommendations, rule.Fix)
			}
		}
		issueCount += len(details)
		checks = append(checks, HealthCheck{
			RuleID:     rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     status,
			IssueCount: len(details),
			Details:    details,
		})
	}

	// Sort health checks by group then by rule ID
	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].RuleID < checks[j].RuleID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: recommendations,
		IssueCount:      issueCount,
	}
}

// calculateHealthScore computes a health score from 0-100. Each issue costs
// five points; errors count double.
func calculateHealthScore(checks []HealthCheck) int {
	const basePenalty = 5
	score := 100
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= check.IssueCount * basePenalty * 2
		case "warn":
			score -= check.IssueCount * basePenalty
		}
	}
	return max(score, 0)
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("viewgen Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Summary
	r.Println(styles.Header2.Render("Setup"))
	r.Printf("   Config: %s\n", orNone(out.Summary.ConfigFile))
	r.Printf("   Templates dir: %s\n", orNone(out.Summary.TemplatesDir))
	r.Printf("   Templates: %d | Overridden: %d | Preview port: %d\n",
		out.Summary.Templates, out.Summary.Overridden, out.Summary.PreviewPort)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + output.TitleCase(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# viewgen Health Report")
	r.Println("")

	r.Println("## Setup")
	r.Println("")
	r.Println(output.FormatKeyValue("Config", orNone(out.Summary.ConfigFile)))
	r.Println(output.FormatKeyValue("Templates dir", orNone(out.Summary.TemplatesDir)))
	r.Println(output.FormatKeyValue("Templates", fmt.Sprint(out.Summary.Templates)))
	r.Println(output.FormatKeyValue("Overridden", fmt.Sprint(out.Summary.Overridden)))
	r.Println(output.FormatKeyValue("Preview port", fmt.Sprint(out.Summary.PreviewPort)))
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + output.TitleCase(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
