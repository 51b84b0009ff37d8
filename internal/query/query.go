// Package query holds the pure, synchronous derivations applied to the
// task-list collection before rendering: text search, ownership filtering,
// sorting, and the aggregate counts behind the stat displays. Nothing here
// touches the network or mutates its input.
package query

import (
	"sort"
	"strings"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Ownership partitions lists by their relation to the current user.
type Ownership string

const (
	OwnershipAll     Ownership = "all"
	OwnershipOwn     Ownership = "own"
	OwnershipShared  Ownership = "shared"
	OwnershipPublic  Ownership = "public"
	OwnershipPrivate Ownership = "private"
)

// SortKey selects the ordering of the filtered result.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortTitle     SortKey = "title"
	SortTaskCount SortKey = "tasks"
)

// Criteria is the UI-selected view over the collection.
type Criteria struct {
	Search    string
	Ownership Ownership
	Sort      SortKey
}

// Apply filters and orders the collection: text filter first, then the
// ownership category, then a stable sort. The input slice is not modified.
func Apply(lists []models.TaskList, c Criteria, currentUserID int64) []models.TaskList {
	out := make([]models.TaskList, 0, len(lists))

	term := strings.ToLower(strings.TrimSpace(c.Search))
	for _, l := range lists {
		if term != "" && !matchesSearch(l, term) {
			continue
		}
		if !matchesOwnership(l, c.Ownership, currentUserID) {
			continue
		}
		out = append(out, l)
	}

	sortLists(out, c.Sort)
	return out
}

func matchesSearch(l models.TaskList, term string) bool {
	if strings.Contains(strings.ToLower(l.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(l.Description), term) {
		return true
	}
	if l.User != nil {
		if strings.Contains(strings.ToLower(l.User.Name), term) {
			return true
		}
		if strings.Contains(strings.ToLower(l.User.Username), term) {
			return true
		}
	}
	return false
}

func matchesOwnership(l models.TaskList, o Ownership, currentUserID int64) bool {
	switch o {
	case OwnershipOwn:
		return l.UserID == currentUserID
	case OwnershipShared:
		return l.UserID != currentUserID && l.IsPublic
	case OwnershipPublic:
		return l.IsPublic
	case OwnershipPrivate:
		return !l.IsPublic
	default:
		return true
	}
}

// sortLists orders in place. Stable: ties keep their original collection
// order rather than falling through to a secondary key.
func sortLists(lists []models.TaskList, key SortKey) {
	switch key {
	case SortOldest:
		sort.SliceStable(lists, func(i, j int) bool {
			return lists[i].CreatedAt.Before(lists[j].CreatedAt)
		})
	case SortTitle:
		sort.SliceStable(lists, func(i, j int) bool {
			return strings.ToLower(lists[i].Title) < strings.ToLower(lists[j].Title)
		})
	case SortTaskCount:
		sort.SliceStable(lists, func(i, j int) bool {
			return lists[i].TaskCount() > lists[j].TaskCount()
		})
	default: // newest
		sort.SliceStable(lists, func(i, j int) bool {
			return lists[i].CreatedAt.After(lists[j].CreatedAt)
		})
	}
}

// Summary holds the aggregate counts over the full, unfiltered collection.
type Summary struct {
	TotalLists     int
	OwnLists       int
	PublicLists    int
	TotalTasks     int
	CompletedTasks int
}

// Summarize computes the aggregates. Lists without a loaded task slice
// contribute their server-provided count to TotalTasks and nothing to
// CompletedTasks.
func Summarize(lists []models.TaskList, currentUserID int64) Summary {
	s := Summary{TotalLists: len(lists)}
	for _, l := range lists {
		if l.IsPublic {
			s.PublicLists++
		}
		if IsOwner(l.UserID, currentUserID) {
			s.OwnLists++
		}
		s.TotalTasks += l.TaskCount()
		s.CompletedTasks += l.CompletedTaskCount()
	}
	return s
}

// IsOwner reports whether the entity owner matches the current user. This
// is a UI affordance only: the server is the sole enforcement point, and a
// true result does not guarantee a mutation will be accepted.
func IsOwner(ownerID, currentUserID int64) bool {
	return currentUserID != 0 && ownerID == currentUserID
}
