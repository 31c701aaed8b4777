package cmd

import (
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/runner"
	"github.com/cedana/netbench/pkg/scenario"
	"github.com/cedana/netbench/pkg/style"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/afero"
	"github.com/xeonx/timeago"
)

// Runs older than this are shown with their date instead of their age
const MAX_RUN_AGE = 7 * 24 * time.Hour

var runAge = timeago.WithMax(timeago.English, MAX_RUN_AGE, time.DateTime)

func getRevision() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return ""
}

// loadScenarios returns the parameter sets to sweep. A scenarios file
// takes precedence over the inline list in the config.
func loadScenarios(fs afero.Fs) ([]scenario.ParameterSet, error) {
	sets := config.Global.Scenarios
	if path := config.Global.ScenariosFile; path != "" {
		var err error
		sets, err = scenario.Load(fs, path)
		if err != nil {
			return nil, err
		}
	}
	return scenario.ValidateAll(sets)
}

// aliasCollisions returns the aliases shared by more than one set, with
// the labels sharing them. Logs and history of such sets are mixed up.
func aliasCollisions(sets []scenario.ParameterSet) map[string][]string {
	labels := make(map[string][]string)
	for _, p := range sets {
		alias := scenario.Alias(p)
		labels[alias] = append(labels[alias], p.Label)
	}
	for alias, l := range labels {
		if len(l) < 2 {
			delete(labels, alias)
		}
	}
	return labels
}

func printScenarios(w io.Writer, sets []scenario.ParameterSet, serverIP string) {
	tableWriter := table.NewWriter()
	tableWriter.SetStyle(style.TableStyle)
	tableWriter.SetOutputMirror(w)

	tableWriter.AppendHeader(table.Row{"#", "Label", "Alias", "Rounds", "Buffer", "Server args", "Client args"})

	for i, p := range sets {
		c := scenario.Build(p, serverIP)
		tableWriter.AppendRow(table.Row{
			i,
			p.Label,
			c.Alias,
			p.NRounds,
			p.BufSize,
			style.DisabledColors.Sprint(c.ServerArgs),
			style.DisabledColors.Sprint(c.ClientArgs),
		})
	}

	tableWriter.Render()

	for alias, labels := range aliasCollisions(sets) {
		fmt.Fprintln(w, style.WarningColors.Sprintf("%s is shared by %v, their logs overwrite each other", alias, labels))
	}
}

// printScaffolding shows what every scenario of a sweep shares.
func printScaffolding(w io.Writer, s config.Scaffolding) {
	tableWriter := table.NewWriter()
	tableWriter.SetStyle(style.TableStyle)
	tableWriter.SetOutputMirror(w)

	timeout := durationStr(s.Timeout)
	if s.Timeout <= 0 {
		timeout = style.DisabledColors.Sprint("none")
	}

	tableWriter.AppendRows([]table.Row{
		{"Repository", s.Repository},
		{"Binaries", fmt.Sprintf("%s / %s", s.ServerName, s.ClientName)},
		{"LibOS", s.LibOS},
		{"Endpoint", scenario.Endpoint(s.ServerIP)},
		{"Debug", style.BoolStr(s.Debug)},
		{"Sudo", style.BoolStr(s.Sudo)},
		{"Delay", durationStr(s.Delay)},
		{"Timeout", timeout},
		{"Logs", s.LogDirectory},
	})
	tableWriter.Render()
}

func printReport(w io.Writer, report *runner.Report) {
	if report == nil {
		return
	}

	tableWriter := table.NewWriter()
	tableWriter.SetStyle(style.TableStyle)
	tableWriter.SetOutputMirror(w)

	tableWriter.AppendHeader(table.Row{"Label", "Alias", "Rounds", "Buffer", "Duration", "Verdict", "Diagnostic"})
	tableWriter.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, WidthMax: 80},
	})

	for _, v := range report.Verdicts {
		diagnostic := v.Diagnostic
		if v.Passed {
			diagnostic = style.DisabledColors.Sprint(diagnostic)
		}
		tableWriter.AppendRow(table.Row{
			v.Label,
			v.Alias,
			v.NRounds,
			v.BufSize,
			durationStr(v.Duration),
			style.PassStr(v.Passed),
			diagnostic,
		})
	}

	tableWriter.AppendFooter(table.Row{
		report.ID,
		"",
		"",
		"",
		durationStr(report.Duration),
		style.PassStr(report.Passed),
		fmt.Sprintf("%s aggregation", report.Aggregation),
	})
	tableWriter.Render()

	if len(report.Verdicts) == 0 {
		return
	}

	s := report.Summarize()
	fmt.Fprintf(w, "\n%s n=%d min=%s p50=%s p90=%s p99=%s max=%s\n",
		text.Bold.Sprint("Durations:"),
		s.Count,
		durationStr(s.Min),
		durationStr(s.P50),
		durationStr(s.P90),
		durationStr(s.P99),
		durationStr(s.Max),
	)
}

func printRuns(w io.Writer, reports []*runner.Report) {
	tableWriter := table.NewWriter()
	tableWriter.SetStyle(style.TableStyle)
	tableWriter.SetOutputMirror(w)

	tableWriter.AppendHeader(table.Row{"ID", "Started", "Duration", "Scenarios", "Failed", "Aggregation", "Verdict"})

	for _, r := range reports {
		failed := len(r.Failed())
		failedStr := fmt.Sprint(failed)
		if failed > 0 {
			failedStr = style.NegativeColors.Sprint(failedStr)
		}
		tableWriter.AppendRow(table.Row{
			r.ID,
			startedStr(r.StartedAt, time.Now()),
			durationStr(r.Duration),
			len(r.Verdicts),
			failedStr,
			r.Aggregation,
			style.PassStr(r.Passed),
		})
	}

	tableWriter.Render()
}

// startedStr shows how long ago a run started, or its date once that
// gets too long to be useful.
func startedStr(t time.Time, now time.Time) string {
	if t.IsZero() {
		return style.DisabledColors.Sprint("unknown")
	}
	return runAge.FormatReference(t.Local(), now)
}

func durationStr(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
