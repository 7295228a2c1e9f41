// Package report renders a completed analysis report for the CLI.
package report

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fatih/color"
	"github.com/repoguard/repoguard/internal/output"
	"github.com/repoguard/repoguard/pkg/models"
)

// View wraps a Report for rendering. The engine keeps all scores in
// [0,1]; only this presentation layer rescales to percentages.
type View struct {
	Report *models.Report
}

// NewView creates a renderable view over a report.
func NewView(r *models.Report) *View {
	return &View{Report: r}
}

// RenderData returns the report itself for JSON serialization.
func (v *View) RenderData() any {
	return v.Report
}

// RenderText writes the human-readable report.
func (v *View) RenderText(w io.Writer, colored bool) error {
	r := v.Report

	header := fmt.Sprintf("Similarity analysis of %d repositories", r.Summary.TotalRepos)
	if colored {
		color.New(color.Bold).Fprintln(w, header)
	} else {
		fmt.Fprintln(w, header)
	}
	fmt.Fprintf(w, "Language: %s  Threshold: %.2f\n", r.Parameters.Language, r.Parameters.Threshold)
	fmt.Fprintf(w, "File pairs compared: %d  Suspicious repository pairs: %d\n\n",
		r.Summary.TotalFilePairsCompared, r.Summary.SuspiciousPairs)

	if err := v.matrixTable().RenderText(w, colored); err != nil {
		return err
	}

	if len(r.SuspiciousPairs) == 0 {
		if colored {
			color.New(color.FgGreen).Fprintln(w, "No suspicious repository pairs found")
		} else {
			fmt.Fprintln(w, "No suspicious repository pairs found")
		}
	}

	for _, pair := range r.SuspiciousPairs {
		title := fmt.Sprintf("%s vs %s: %.0f%% similar",
			shortName(pair.RepoA), shortName(pair.RepoB), pair.RepoSimilarity*100)
		if colored {
			color.New(color.FgRed, color.Bold).Fprintln(w, title)
		} else {
			fmt.Fprintln(w, title)
		}
		if err := filePairTable(pair).RenderText(w, colored); err != nil {
			return err
		}
		if pair.Explanation != "" {
			fmt.Fprintln(w, pair.Explanation)
			fmt.Fprintln(w)
		}
	}

	if len(r.CommitFlags) > 0 {
		if err := commitFlagTable(r.CommitFlags).RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

// RenderMarkdown writes the report as markdown.
func (v *View) RenderMarkdown(w io.Writer) error {
	r := v.Report
	fmt.Fprintf(w, "# Similarity analysis of %d repositories\n\n", r.Summary.TotalRepos)
	fmt.Fprintf(w, "- Language: %s\n- Threshold: %.2f\n- File pairs compared: %d\n- Suspicious pairs: %d\n\n",
		r.Parameters.Language, r.Parameters.Threshold,
		r.Summary.TotalFilePairsCompared, r.Summary.SuspiciousPairs)

	if err := v.matrixTable().RenderMarkdown(w); err != nil {
		return err
	}
	for _, pair := range r.SuspiciousPairs {
		fmt.Fprintf(w, "## %s vs %s (%.0f%%)\n\n",
			shortName(pair.RepoA), shortName(pair.RepoB), pair.RepoSimilarity*100)
		if err := filePairTable(pair).RenderMarkdown(w); err != nil {
			return err
		}
		if pair.Explanation != "" {
			fmt.Fprintf(w, "%s\n\n", pair.Explanation)
		}
	}
	if len(r.CommitFlags) > 0 {
		if err := commitFlagTable(r.CommitFlags).RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) matrixTable() *output.Table {
	m := v.Report.RepositoryMatrix
	headers := make([]string, 0, m.Size()+1)
	headers = append(headers, "Repository")
	for _, repo := range m.Repos {
		headers = append(headers, shortName(repo))
	}

	rows := make([][]string, m.Size())
	for i := range m.Repos {
		row := make([]string, 0, m.Size()+1)
		row = append(row, shortName(m.Repos[i]))
		for j := range m.Repos {
			row = append(row, fmt.Sprintf("%.0f%%", m.At(i, j)*100))
		}
		rows[i] = row
	}

	return &output.Table{
		Title:   "Repository similarity matrix",
		Headers: headers,
		Rows:    rows,
		Data:    m,
	}
}

func filePairTable(pair models.RepoPairResult) *output.Table {
	rows := make([][]string, 0, len(pair.FilePairs))
	for _, fp := range pair.FilePairs {
		rows = append(rows, []string{
			fp.FileA,
			fp.FileB,
			fmt.Sprintf("%.0f%%", fp.CombinedScore*100),
			string(fp.Band),
		})
	}
	return &output.Table{
		Headers: []string{"File A", "File B", "Similarity", "Band"},
		Rows:    rows,
		Data:    pair.FilePairs,
	}
}

func commitFlagTable(flags []models.CommitFlag) *output.Table {
	rows := make([][]string, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, []string{
			shortName(f.RepoA) + "@" + f.CommitA,
			shortName(f.RepoB) + "@" + f.CommitB,
			string(f.Signal),
			f.Reason,
		})
	}
	return &output.Table{
		Title:   "Suspicious commits",
		Headers: []string{"Commit A", "Commit B", "Signal", "Reason"},
		Rows:    rows,
		Data:    flags,
	}
}

// shortName strips the host and owner from a repository URL for
// compact display.
func shortName(repo string) string {
	name := strings.TrimSuffix(repo, ".git")
	return path.Base(name)
}
