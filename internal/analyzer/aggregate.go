package analyzer

import "github.com/shinji-kodama/semrel/internal/model"

// Aggregate returns the dominant ChangeKind of a classified commit list:
// the maximum kind, or KindUnannotated for an empty list.
//
// The slice is only read. Callers keep using it in its original order for
// changelog rendering.
func Aggregate(commits []model.ClassifiedCommit) model.ChangeKind {
	dominant := model.KindUnannotated
	for i := range commits {
		dominant = model.MaxKind(dominant, commits[i].Kind)
	}
	return dominant
}

// Analyze drops release-marker commits and classifies the rest, preserving
// input order.
func Analyze(records []model.CommitRecord) []model.ClassifiedCommit {
	classified := make([]model.ClassifiedCommit, 0, len(records))
	for _, rec := range records {
		if IsReleaseMarker(rec.Message) {
			continue
		}
		classified = append(classified, ClassifyCommit(rec))
	}
	return classified
}
