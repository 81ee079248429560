package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/s22625/fwbuild/internal/model"
	"github.com/s22625/fwbuild/internal/reconcile"
)

var (
	colorGreen = lipgloss.Color("42")
	colorBlue  = lipgloss.Color("39")
	colorGray  = lipgloss.Color("245")
	colorRed   = lipgloss.Color("196")
)

type summaryStyles struct {
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
}

func newSummaryStyles(w io.Writer) summaryStyles {
	r := lipgloss.NewRenderer(w)
	return summaryStyles{
		Label:   r.NewStyle().Foreground(colorBlue).Bold(true).Width(10),
		Value:   r.NewStyle(),
		Muted:   r.NewStyle().Foreground(colorGray),
		Success: r.NewStyle().Foreground(colorGreen).Bold(true),
		Failed:  r.NewStyle().Foreground(colorRed).Bold(true),
	}
}

type jsonSummary struct {
	OK       bool           `json:"ok"`
	DryRun   bool           `json:"dryRun,omitempty"`
	Decision string         `json:"decision,omitempty"`
	Kind     reconcile.Kind `json:"errorKind,omitempty"`
	Error    string         `json:"error,omitempty"`
	*reconcile.State
}

func printJSON(w io.Writer, st *reconcile.State, dryRun bool, runErr error) error {
	if st == nil {
		st = &reconcile.State{}
	}
	out := jsonSummary{
		OK:     runErr == nil,
		DryRun: dryRun,
		State:  st,
	}
	if dryRun && runErr == nil {
		out.Decision = decisionWord(st.Decision)
	}
	if runErr != nil {
		out.Error = runErr.Error()
		out.Kind, _ = reconcile.KindOf(runErr)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func decisionWord(d reconcile.Decision) string {
	if d.Trigger {
		return "trigger"
	}
	return "reuse"
}

func printSummary(w io.Writer, st *reconcile.State, dryRun bool) {
	s := newSummaryStyles(w)
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", s.Label.Render(label), value)
	}

	if !st.SHA.IsZero() {
		target := st.SHA.Short()
		if branch := st.Ref.Branch(); branch != "" {
			target += s.Muted.Render(" (" + branch + ")")
		}
		line("Commit", target)
	}

	if dryRun {
		d := st.Decision
		if d.Trigger {
			line("Decision", fmt.Sprintf("dispatch %s on %s", st.Workflow, st.Ref))
		} else {
			line("Decision", fmt.Sprintf("reuse %s run %d", d.Bucket, d.Run.ID))
			line("URL", d.Run.URL)
		}
		return
	}

	if st.Run != nil {
		origin := "dispatched"
		if st.Reused {
			origin = fmt.Sprintf("reused, %s", st.Bucket)
		}
		line("Run", fmt.Sprintf("%s %s %s", st.Run.IDString(), outcomeLabel(s, st.Run), s.Muted.Render("("+origin+")")))
		if st.Run.URL != "" {
			line("URL", st.Run.URL)
		}
	}

	if st.Artifact != nil {
		dir := st.Artifact.Dir
		if st.Artifact.Fallback {
			dir += s.Muted.Render(" (all artifacts)")
		}
		line("Artifact", dir)
		for _, f := range st.Artifact.Files {
			fmt.Fprintf(w, "%s %s\n", s.Label.Render(""), filepath.Join(st.Artifact.Dir, f))
		}
	}
}

func outcomeLabel(s summaryStyles, r *model.Run) string {
	c, ok := r.Outcome()
	if !ok {
		return s.Muted.Render(string(r.Status))
	}
	if c == model.ConclusionSuccess {
		return s.Success.Render(string(c))
	}
	return s.Failed.Render(string(c))
}
