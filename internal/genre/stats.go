package genre

import "sort"

// TagCount is how many cached artists carry a tag.
type TagCount struct {
	Tag     string
	Artists int
}

// CacheStats summarizes a genre cache.
type CacheStats struct {
	Artists  int
	Tagged   int
	Untagged int

	// Tags is ordered by artist count, most common first, then by name.
	Tags []TagCount
}

// Stats counts the entries and tags of g.
func Stats(g Genres) CacheStats {
	var s CacheStats
	counts := make(map[string]int)
	for _, tags := range g {
		s.Artists++
		if len(tags) == 0 {
			s.Untagged++
			continue
		}
		s.Tagged++
		for _, tag := range tags {
			counts[tag]++
		}
	}

	s.Tags = make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		s.Tags = append(s.Tags, TagCount{Tag: tag, Artists: n})
	}
	sort.Slice(s.Tags, func(i, j int) bool {
		if s.Tags[i].Artists != s.Tags[j].Artists {
			return s.Tags[i].Artists > s.Tags[j].Artists
		}
		return s.Tags[i].Tag < s.Tags[j].Tag
	})
	return s
}
