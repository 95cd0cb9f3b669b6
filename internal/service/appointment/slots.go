package appointment

import (
	"iter"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// SlotGranularity is the spacing of generated slot start times
const SlotGranularity = 30 * time.Minute

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
)

type Slot struct {
	Time   model.Clock `json:"time"`
	Status SlotStatus  `json:"status"`
}

// GenerateSlots walks every window in step increments and yields slot start
// times in ascending order. Overlapping windows yield each time once.
// Occupied times are yielded as booked when includeBooked is set and skipped
// otherwise. The sequence is lazy and may be ranged over more than once.
func GenerateSlots(windows []model.Window, occupied []model.Clock, step time.Duration, includeBooked bool) iter.Seq[Slot] {
	taken := make(map[model.Clock]struct{}, len(occupied))
	for _, c := range occupied {
		taken[c] = struct{}{}
	}
	stepMin := model.Clock(step / time.Minute)

	return func(yield func(Slot) bool) {
		if stepMin <= 0 {
			return
		}
		cursors := make([]model.Clock, len(windows))
		for i, w := range windows {
			cursors[i] = w.Start
		}

		last := model.Clock(-1)
		for {
			next := -1
			for i, w := range windows {
				if cursors[i] >= w.End {
					continue
				}
				if next < 0 || cursors[i] < cursors[next] {
					next = i
				}
			}
			if next < 0 {
				return
			}

			at := cursors[next]
			cursors[next] += stepMin
			if at == last {
				continue
			}
			last = at

			_, booked := taken[at]
			switch {
			case !booked:
				if !yield(Slot{Time: at, Status: SlotAvailable}) {
					return
				}
			case includeBooked:
				if !yield(Slot{Time: at, Status: SlotBooked}) {
					return
				}
			}
		}
	}
}
