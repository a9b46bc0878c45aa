package extract

import (
	"testing"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHybrid_NoAIStringsMatchesExtract(t *testing.T) {
	ex := newTestExtractor(wordTagger{"Priya": LabelPerson}, phraseDates{"tomorrow": 24 * time.Hour})
	text := "Priya's manager said I'll get the proposal tomorrow"

	plain, err := ex.Extract(text)
	require.NoError(t, err)

	for _, ai := range [][]string{nil, {}} {
		hybrid, err := ex.ExtractHybrid(text, ai)
		require.NoError(t, err)

		assert.Equal(t, plain.Structured, hybrid.Structured)
		assert.Equal(t, plain.AllEntities, hybrid.AllEntities)
		assert.Equal(t, 0, hybrid.Metadata.AICount)
		assert.Equal(t, plain.Metadata.TotalCount, hybrid.Metadata.TotalCount)
		assert.Empty(t, hybrid.Structured.Other)
	}
}

func TestExtractHybrid_Dedup(t *testing.T) {
	ex := newTestExtractor(wordTagger{"Acme Corp": LabelOrganization}, nil)
	text := "Email Dana@Acme.io about the Acme Corp renewal with our vendor"

	result, err := ex.ExtractHybrid(text, []string{
		"ACME CORP",        // company value
		"dana@acme.io",     // email normalized value
		" Dana@Acme.io ",   // email value after trim
		"Vendor",           // signal value
		"renewal contract", // new
		"  ",               // blank
		"Q3 budget",        // new
	})
	require.NoError(t, err)

	require.Len(t, result.Structured.Other, 2)
	assert.Equal(t, "renewal contract", result.Structured.Other[0].Value)
	assert.Equal(t, "Q3 budget", result.Structured.Other[1].Value)
	assert.Equal(t, "q3 budget", result.Structured.Other[1].NormalizedValue)
	for _, o := range result.Structured.Other {
		assert.Equal(t, entity.TypeOther, o.Type)
		assert.Equal(t, entity.SourceAI, o.Source)
		assert.Equal(t, entity.ConfidenceMedium, o.Confidence)
		assert.Nil(t, o.Metadata)
		_, _, anchored := o.Span()
		assert.False(t, anchored)
	}

	assert.Equal(t, 2, result.Metadata.AICount)
	assert.Equal(t, result.Metadata.DeterministicCount+2, result.Metadata.TotalCount)
	assert.Len(t, result.AllEntities, result.Metadata.TotalCount)
	assert.Equal(t, result.Structured.Other, result.AllEntities[result.Metadata.DeterministicCount:])
}

func TestExtractHybrid_OtherIsOverwrittenPerCall(t *testing.T) {
	ex := newTestExtractor(nil, nil)

	first, err := ex.ExtractHybrid("plain note", []string{"alpha"})
	require.NoError(t, err)
	second, err := ex.ExtractHybrid("plain note", []string{"beta"})
	require.NoError(t, err)

	require.Len(t, first.Structured.Other, 1)
	require.Len(t, second.Structured.Other, 1)
	assert.Equal(t, "beta", second.Structured.Other[0].Value)
}

func TestMergeAI_KeepsDuplicateSuggestions(t *testing.T) {
	result := &entity.Result{
		Structured:  entity.NewStructuredEntities(),
		AllEntities: []entity.ParsedEntity{},
	}

	mergeAI(result, []string{"Board meeting", "board meeting"})

	assert.Len(t, result.Structured.Other, 2)
	assert.Equal(t, 2, result.Metadata.TotalCount)
}
