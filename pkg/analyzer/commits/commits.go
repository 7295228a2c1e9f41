// Package commits inspects commit history for suspicious cross-repository
// reuse: near-identical diffs and near-identical commit messages.
// Commit analysis is independent of file-level analysis; a repository
// with no commit history still produces a valid file-level result.
package commits

import (
	"fmt"
	"strings"

	"github.com/repoguard/repoguard/pkg/config"
	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/preprocess"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// ScoreFunc returns the token and semantic similarity of two texts.
// The caller supplies it so scoring can read the job's frozen
// embedding cache.
type ScoreFunc func(textA, textB string) (tokenScore, semanticScore float64)

// Doc is one commit prepared for comparison: its message plus a
// normalized synthetic diff built from added/removed lines only.
// Unchanged context lines dilute the signal and are excluded.
type Doc struct {
	Record models.CommitRecord
	Diff   string
}

// Analyzer scores commit pairs across repositories.
type Analyzer struct {
	cfg        config.CommitConfig
	normalizer *preprocess.Normalizer
	combiner   *similarity.Combiner
	threshold  float64
}

// New creates a commit analyzer. The normalizer is the job's
// preprocessor; diffs run through the same pipeline as source files.
func New(cfg config.CommitConfig, normalizer *preprocess.Normalizer, combiner *similarity.Combiner, threshold float64) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		normalizer: normalizer,
		combiner:   combiner,
		threshold:  threshold,
	}
}

// IsAutomated reports whether a commit message is likely automated
// (merge commits, version bumps, bot traffic). Automated commits carry
// no reuse signal and are skipped when configured.
func IsAutomated(message string) bool {
	if message == "" {
		return true
	}
	msg := strings.ToLower(strings.TrimSpace(message))
	return strings.HasPrefix(msg, "merge") ||
		strings.HasPrefix(msg, "bump ") ||
		strings.Contains(msg, "dependabot") ||
		strings.Contains(msg, "bot")
}

// BuildDocs prepares a repository's commit window for comparison.
// A commit with no added/removed lines keeps an empty diff; that is a
// data-quality condition, not an error.
func (a *Analyzer) BuildDocs(records []models.CommitRecord) []Doc {
	docs := make([]Doc, 0, len(records))
	for _, rec := range records {
		if a.cfg.SkipAutomated && IsAutomated(rec.Message) {
			continue
		}
		docs = append(docs, Doc{
			Record: rec,
			Diff:   a.normalizer.Normalize(a.syntheticDiff(rec)),
		})
	}
	return docs
}

// syntheticDiff joins the commit's added and removed lines, capped at
// the configured line budget.
func (a *Analyzer) syntheticDiff(rec models.CommitRecord) string {
	budget := a.cfg.MaxDiffLines
	if budget <= 0 {
		budget = 100
	}
	lines := make([]string, 0, budget)
	for _, l := range rec.AddedLines {
		if len(lines) >= budget {
			break
		}
		lines = append(lines, l)
	}
	for _, l := range rec.RemovedLines {
		if len(lines) >= budget {
			break
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n")
}

// Texts returns every string the docs need embedded: diff texts and
// messages. The service adds them to the job's embedding batch so
// vectors are computed once up front, never per pair.
func Texts(docs []Doc) []string {
	texts := make([]string, 0, 2*len(docs))
	for _, d := range docs {
		if d.Diff != "" {
			texts = append(texts, d.Diff)
		}
		if d.Record.Message != "" {
			texts = append(texts, d.Record.Message)
		}
	}
	return texts
}

// Compare scores every commit pair between two repositories and emits
// a flag when the diff or message similarity meets the active
// threshold. Each flag names the signal that triggered it.
func (a *Analyzer) Compare(docsA, docsB []Doc, score ScoreFunc) []models.CommitFlag {
	var flags []models.CommitFlag
	for _, da := range docsA {
		for _, db := range docsB {
			diffSim := a.combined(da.Diff, db.Diff, score)
			msgSim := a.combined(da.Record.Message, db.Record.Message, score)

			if diffSim < a.threshold && msgSim < a.threshold {
				continue
			}

			signal := models.SignalDiff
			reason := fmt.Sprintf("commit diffs are %.0f%% similar", diffSim*100)
			if msgSim >= a.threshold && msgSim > diffSim {
				signal = models.SignalMessage
				reason = fmt.Sprintf("commit messages are %.0f%% similar", msgSim*100)
			}

			flags = append(flags, models.CommitFlag{
				RepoA:             da.Record.RepoID,
				RepoB:             db.Record.RepoID,
				CommitA:           da.Record.Hash,
				CommitB:           db.Record.Hash,
				MessageSimilarity: msgSim,
				DiffSimilarity:    diffSim,
				Signal:            signal,
				Reason:            reason,
			})
		}
	}
	return flags
}

func (a *Analyzer) combined(textA, textB string, score ScoreFunc) float64 {
	if textA == "" || textB == "" {
		return 0.0
	}
	tok, sem := score(textA, textB)
	combined, _ := a.combiner.Combine(tok, sem)
	return combined
}
