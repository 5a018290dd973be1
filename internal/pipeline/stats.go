package pipeline

import "github.com/shortreel/acquire-cli/internal/model"

// BuildStatistics derives the per-run summary from the stage outputs. It has
// no state of its own: every counter is recomputed from the inputs.
func BuildStatistics(totalFetched int, unique []model.Asset, failedSources []string) model.RunStatistics {
	tagged := 0
	for i := range unique {
		if unique[i].HasEnrichedTags() {
			tagged++
		}
	}

	return model.RunStatistics{
		TotalFetched:      totalFetched,
		TotalUnique:       len(unique),
		DuplicatesRemoved: totalFetched - len(unique),
		TaggedCount:       tagged,
		FailedSources:     failedSources,
	}
}
