package report

import (
	"strings"
	"testing"
	"time"

	"github.com/repoguard/repoguard/pkg/models"
)

func sampleReport() *models.Report {
	matrix := models.NewSimilarityMatrix([]string{
		"https://github.com/org/alpha.git",
		"https://github.com/org/beta.git",
	})
	matrix.Set(0, 1, 0.92)

	return &models.Report{
		JobID:     "job-1",
		Timestamp: time.Now(),
		Parameters: models.Parameters{
			Repositories: []string{"https://github.com/org/alpha.git", "https://github.com/org/beta.git"},
			Language:     "python",
			Threshold:    0.75,
		},
		Summary: models.Summary{
			TotalRepos:             2,
			SuspiciousPairs:        1,
			TotalFilePairsCompared: 4,
		},
		RepositoryMatrix: matrix,
		SuspiciousPairs: []models.RepoPairResult{{
			RepoA:          "https://github.com/org/alpha.git",
			RepoB:          "https://github.com/org/beta.git",
			RepoSimilarity: 0.92,
			Flagged:        true,
			FilePairs: []models.FilePairScore{{
				FileA: "main.py", FileB: "core.py",
				TokenScore: 0.9, SemanticScore: 0.95, CombinedScore: 0.925,
				Band: models.BandHigh,
			}},
			Explanation: "most normalized source is shared",
		}},
		CommitFlags: []models.CommitFlag{{
			RepoA: "https://github.com/org/alpha.git", RepoB: "https://github.com/org/beta.git",
			CommitA: "aaaa1111", CommitB: "bbbb2222",
			Signal: models.SignalDiff, Reason: "commit diffs are 96% similar",
		}},
	}
}

func TestRenderText(t *testing.T) {
	var sb strings.Builder
	if err := NewView(sampleReport()).RenderText(&sb, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"Similarity analysis of 2 repositories",
		"alpha",                        // short repo name
		"92%",                          // repo similarity
		"main.py",                      // file pair
		"high",                         // band
		"aaaa1111",                     // commit flag
		"most normalized source is shared", // explanation
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTextNoSuspiciousPairs(t *testing.T) {
	r := sampleReport()
	r.SuspiciousPairs = nil
	r.CommitFlags = nil
	r.Summary.SuspiciousPairs = 0

	var sb strings.Builder
	if err := NewView(r).RenderText(&sb, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !strings.Contains(sb.String(), "No suspicious repository pairs found") {
		t.Errorf("missing all-clear message:\n%s", sb.String())
	}
}

func TestRenderMarkdown(t *testing.T) {
	var sb strings.Builder
	if err := NewView(sampleReport()).RenderMarkdown(&sb); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "# Similarity analysis of 2 repositories") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "## alpha vs beta (92%)") {
		t.Errorf("missing pair heading:\n%s", out)
	}
}

func TestRenderData(t *testing.T) {
	r := sampleReport()
	v := NewView(r)
	if v.RenderData() != r {
		t.Error("RenderData must return the report itself")
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		repo string
		want string
	}{
		{repo: "https://github.com/org/alpha.git", want: "alpha"},
		{repo: "https://github.com/org/alpha", want: "alpha"},
		{repo: "git@host:path/beta.git", want: "beta"},
		{repo: "local", want: "local"},
	}
	for _, tt := range tests {
		if got := shortName(tt.repo); got != tt.want {
			t.Errorf("shortName(%q) = %q, want %q", tt.repo, got, tt.want)
		}
	}
}
