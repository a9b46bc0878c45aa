package extract

import (
	"strings"

	"github.com/athapong/notegraph/pkg/entity"
	mapset "github.com/deckarep/golang-set/v2"
)

// mergeAI folds AI-suggested entity strings into a deterministic result.
// Strings already known by value or normalized value are dropped; survivors
// replace Structured.Other and are appended to AllEntities.
func mergeAI(result *entity.Result, aiEntities []string) {
	if len(aiEntities) == 0 {
		return
	}

	known := mapset.NewSet[string]()
	for _, e := range result.AllEntities {
		known.Add(strings.ToLower(e.Value))
		known.Add(strings.ToLower(e.NormalizedValue))
	}

	survivors := make([]entity.ParsedEntity, 0)
	for _, raw := range aiEntities {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if known.Contains(key) {
			continue
		}
		survivors = append(survivors, entity.ParsedEntity{
			Type:            entity.TypeOther,
			Value:           value,
			NormalizedValue: key,
			Confidence:      entity.ConfidenceMedium,
			Source:          entity.SourceAI,
		})
	}

	result.Structured.Other = survivors
	result.AllEntities = append(result.AllEntities, survivors...)
	result.Metadata.AICount = len(survivors)
	result.Metadata.TotalCount = result.Metadata.DeterministicCount + result.Metadata.AICount
}
