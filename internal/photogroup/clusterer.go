// Package photogroup buckets timestamped photos into probable dive sessions
// and assigns each bucket to a dive by ordinal position.
package photogroup

import (
	"sort"
	"time"

	"github.com/mkarlsen/divelog/internal/entities"
)

// Clusterer partitions photos into maximal runs where every consecutive
// pair is closer than the gap threshold.
type Clusterer struct {
	gap time.Duration
}

func NewClusterer(gapMinutes int) *Clusterer {
	return &Clusterer{gap: time.Duration(gapMinutes) * time.Minute}
}

// Group sorts photos with a recoverable capture time and splits them at
// every idle period of at least the threshold. Photos without any capture
// time are returned separately, untouched, never merged into a group.
//
// A photo whose stored time fails to re-parse here (formatting noise from
// an older scan) continues the current group rather than forcing a split.
func (c *Clusterer) Group(photos []entities.ScannedPhoto) (groups []entities.PhotoGroup, untimed []entities.ScannedPhoto) {
	var timed []entities.ScannedPhoto
	for _, p := range photos {
		if p.CaptureTime == "" {
			untimed = append(untimed, p)
		} else {
			timed = append(timed, p)
		}
	}

	// Stable sort: ties and unparseable times keep input order.
	sort.SliceStable(timed, func(i, j int) bool {
		ti, oki := timed[i].ParsedCaptureTime()
		tj, okj := timed[j].ParsedCaptureTime()
		if !oki || !okj {
			return false
		}
		return ti.Before(tj)
	})

	var (
		current  *entities.PhotoGroup
		lastTime time.Time
		haveLast bool
	)

	flush := func() {
		if current != nil {
			groups = append(groups, *current)
			current = nil
		}
	}

	for _, p := range timed {
		t, ok := p.ParsedCaptureTime()

		switch {
		case current == nil:
			current = &entities.PhotoGroup{}
		case ok && haveLast && t.Sub(lastTime) >= c.gap:
			flush()
			current = &entities.PhotoGroup{}
		}

		current.Photos = append(current.Photos, p)
		if ok {
			if current.StartTime.IsZero() {
				current.StartTime = t
			}
			current.EndTime = t
			lastTime = t
			haveLast = true
		}
	}
	flush()

	return groups, untimed
}
