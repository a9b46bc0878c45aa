package extract

import "github.com/athapong/notegraph/pkg/entity"

// linkWindow is how far past a commitment's start a date may begin and still
// be taken as its deadline.
const linkWindow = 100

// linkCommitments sets LinkedDate on each commitment to the first date that
// starts after it and within linkWindow. Dates must be in text order.
func linkCommitments(commitments, dates []entity.ParsedEntity) []entity.ParsedEntity {
	linked := make([]entity.ParsedEntity, len(commitments))
	copy(linked, commitments)

	for i, c := range linked {
		cStart, _, ok := c.Span()
		meta := c.Commitment()
		if !ok || meta == nil {
			continue
		}

		for _, d := range dates {
			dStart, _, ok := d.Span()
			if !ok || dStart <= cStart || dStart-cStart > linkWindow {
				continue
			}
			m := *meta
			m.LinkedDate = d.NormalizedValue
			linked[i].Metadata = &m
			break
		}
	}

	return linked
}
