package matching

import (
	"sort"
	"strings"

	"MINDBRIDGE_BACK-END/internal/dto"
)

// SortKey orders a peer list
type SortKey string

const (
	SortByMatch           SortKey = "match"
	SortByRating          SortKey = "rating"
	SortByPeopleSupported SortKey = "peopleSupported"
	SortByAvailability    SortKey = "availability"
)

// ParseSortKey maps a query value to a SortKey. The empty string selects
// SortByMatch.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "match":
		return SortByMatch, true
	case "rating":
		return SortByRating, true
	case "peoplesupported", "people_supported":
		return SortByPeopleSupported, true
	case "availability":
		return SortByAvailability, true
	}
	return "", false
}

// Filter selects peers. A nil or false ActiveOnly keeps everyone and an
// empty SupportType matches any type.
type Filter struct {
	ActiveOnly  *bool
	SupportType string
}

// FilterPeers returns the peers matching f in their original order.
// The input slice is not modified.
func FilterPeers(list []dto.PeerMatch, f Filter) []dto.PeerMatch {
	out := make([]dto.PeerMatch, 0, len(list))
	for _, p := range list {
		if f.ActiveOnly != nil && *f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.SupportType != "" && !strings.EqualFold(p.SupportType, f.SupportType) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// availabilityRank orders sooner availability first
func availabilityRank(a string) int {
	switch strings.ToLower(a) {
	case "now":
		return 0
	case "today":
		return 1
	case "this_week":
		return 2
	}
	return 3
}

// SortPeers orders list in place. The sort is stable so equal keys keep
// their relative order; an unknown key leaves the list untouched.
func SortPeers(list []dto.PeerMatch, key SortKey) {
	var less func(i, j int) bool
	switch key {
	case SortByMatch:
		less = func(i, j int) bool { return list[i].MatchScore > list[j].MatchScore }
	case SortByRating:
		less = func(i, j int) bool { return list[i].Rating > list[j].Rating }
	case SortByPeopleSupported:
		less = func(i, j int) bool { return list[i].PeopleSupported > list[j].PeopleSupported }
	case SortByAvailability:
		less = func(i, j int) bool {
			return availabilityRank(list[i].Availability) < availabilityRank(list[j].Availability)
		}
	default:
		return
	}
	sort.SliceStable(list, less)
}
