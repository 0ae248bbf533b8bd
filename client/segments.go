package client

import (
	"sort"

	"filmroom/entities"
)

// MergeSegment inserts a freshly created segment into a held list, keeping
// the ascending start-time order the server guarantees, so no re-fetch is
// needed after a create.
func MergeSegment(segments []*entities.Segment, segment *entities.Segment) []*entities.Segment {
	i := sort.Search(len(segments), func(i int) bool {
		return segments[i].StartSecond > segment.StartSecond
	})
	segments = append(segments, nil)
	copy(segments[i+1:], segments[i:])
	segments[i] = segment
	return segments
}
