package extract

import (
	"testing"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlashDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []time.Time
	}{
		{
			name: "month first with year",
			text: "Dinner on 1/5/2027 with the team",
			want: []time.Time{time.Date(2027, time.January, 5, 9, 0, 0, 0, time.UTC)},
		},
		{
			name: "two digit year",
			text: "due 3/4/27",
			want: []time.Time{time.Date(2027, time.March, 4, 9, 0, 0, 0, time.UTC)},
		},
		{
			name: "no year uses current year",
			text: "party on 12/25",
			want: []time.Time{time.Date(2026, time.December, 25, 9, 0, 0, 0, time.UTC)},
		},
		{
			name: "day first is not a date",
			text: "invoice dated 31/12/2026",
			want: nil,
		},
		{
			name: "impossible day",
			text: "moved to 2/30/2027",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := slashDates(tt.text, fixedNow)
			got := make([]time.Time, 0, len(matches))
			for _, m := range matches {
				assert.Equal(t, m.Text, tt.text[m.Index:m.Index+len(m.Text)])
				got = append(got, m.Time)
			}
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhenDateParser_ListOfDates(t *testing.T) {
	text := "Tomorrow, Friday, and next Monday"
	matches, err := NewWhenDateParser().ParseAll(text, fixedNow)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, "Tomorrow", matches[0].Text)
	assert.Equal(t, "Friday", matches[1].Text)
	assert.Equal(t, "next Monday", matches[2].Text)

	y, m, d := matches[0].Time.Date()
	assert.Equal(t, []int{2026, 10, 15}, []int{y, int(m), d})
	assert.Equal(t, time.Friday, matches[1].Time.Weekday())
	assert.Equal(t, time.Monday, matches[2].Time.Weekday())

	for i, match := range matches {
		assert.Equal(t, match.Text, text[match.Index:match.Index+len(match.Text)])
		if i > 0 {
			assert.Greater(t, match.Index, matches[i-1].Index)
		}
	}
}

func TestWhenDateParser_CompoundStaysWhole(t *testing.T) {
	matches, err := NewWhenDateParser().ParseAll("Let's talk next Friday at 3pm.", fixedNow)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Text, "Friday")
	assert.Contains(t, matches[0].Text, "3pm")
	assert.Equal(t, time.Friday, matches[0].Time.Weekday())
	assert.Equal(t, 15, matches[0].Time.Hour())
}

func TestWhenDateParser_SlashAndPhraseInOrder(t *testing.T) {
	text := "Call me tomorrow, the venue is booked for 12/1/2026"
	matches, err := NewWhenDateParser().ParseAll(text, fixedNow)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "tomorrow", matches[0].Text)
	assert.Equal(t, "12/1/2026", matches[1].Text)
	assert.Equal(t, time.December, matches[1].Time.Month())
	assert.Equal(t, 1, matches[1].Time.Day())
}

func TestExtract_SlashDateIsMonthFirst(t *testing.T) {
	prev := time.Local
	time.Local = time.UTC
	defer func() { time.Local = prev }()

	ex := New(WithTagger(wordTagger{}), WithClock(fixedClock))
	result, err := ex.Extract("Dinner on 1/5/2027 with the team")
	require.NoError(t, err)

	require.Len(t, result.Structured.Dates, 1)
	date := result.Structured.Dates[0]
	assert.Equal(t, "1/5/2027", date.Value)
	assert.Equal(t, "2027-01-05T09:00:00.000Z", date.NormalizedValue)
	assert.False(t, date.Date().IsRelative)
	assert.True(t, date.Date().IsFuture)

	assert.Contains(t, entity.ActionableItems(result.Structured), "Event on 1/5/2027")
}
