package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/models"
)

func list(id, userID int64, title string, public bool) models.TaskList {
	return models.TaskList{
		ID:       id,
		UserID:   userID,
		Title:    title,
		IsPublic: public,
		User:     &models.ListOwner{ID: userID, Name: "Owner " + title, Username: "owner" + title},
	}
}

func TestApply_SearchMatchesTitle(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Urgent fixes", true),
		list(2, 1, "Groceries", true),
	}

	got := Apply(lists, Criteria{Search: "urgent"}, 1)

	require.Len(t, got, 1)
	assert.Equal(t, "Urgent fixes", got[0].Title)
}

func TestApply_SearchMatchesDescriptionAndOwner(t *testing.T) {
	lists := []models.TaskList{
		{ID: 1, Title: "Alpha", Description: "weekend chores", User: &models.ListOwner{Name: "Ann", Username: "ann"}},
		{ID: 2, Title: "Beta", User: &models.ListOwner{Name: "Bob Chorfield", Username: "bob"}},
		{ID: 3, Title: "Gamma", User: &models.ListOwner{Name: "Cleo", Username: "chor_cleo"}},
		{ID: 4, Title: "Delta", User: &models.ListOwner{Name: "Dan", Username: "dan"}},
	}

	got := Apply(lists, Criteria{Search: "chor"}, 0)

	require.Len(t, got, 3)
	for _, l := range got {
		assert.NotEqual(t, int64(4), l.ID)
	}
}

func TestApply_SearchIsIdempotent(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Work", true),
		list(2, 2, "Workout", false),
		list(3, 3, "Other", true),
	}
	c := Criteria{Search: "work"}

	once := Apply(lists, c, 1)
	twice := Apply(once, c, 1)

	assert.Equal(t, once, twice)
}

func TestApply_OwnershipOwn(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Mine", false),
		list(2, 2, "Theirs public", true),
		list(3, 2, "Theirs private", false),
		list(4, 1, "Also mine", true),
	}

	got := Apply(lists, Criteria{Ownership: OwnershipOwn}, 1)

	require.Len(t, got, 2)
	for _, l := range got {
		assert.Equal(t, int64(1), l.UserID)
	}
}

func TestApply_OwnershipShared(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Mine public", true),
		list(2, 2, "Theirs public", true),
		list(3, 2, "Theirs private", false),
	}

	got := Apply(lists, Criteria{Ownership: OwnershipShared}, 1)

	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestApply_OwnershipPublic(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Open", true),
		list(2, 1, "Closed", false),
	}

	got := Apply(lists, Criteria{Ownership: OwnershipPublic}, 1)

	require.Len(t, got, 1)
	assert.True(t, got[0].IsPublic)
}

func TestApply_OwnershipPrivate(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "Open", true),
		list(2, 1, "Closed", false),
	}

	got := Apply(lists, Criteria{Ownership: OwnershipPrivate}, 1)

	require.Len(t, got, 1)
	assert.False(t, got[0].IsPublic)
}

func TestApply_SortTitleNonDecreasing(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "zebra", true),
		list(2, 1, "Apple", true),
		list(3, 1, "mango", true),
		list(4, 1, "apple pie", true),
	}

	got := Apply(lists, Criteria{Sort: SortTitle}, 1)

	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		prev := strings.ToLower(got[i-1].Title)
		cur := strings.ToLower(got[i].Title)
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestApply_SortNewestAndOldest(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id int64, age time.Duration) models.TaskList {
		l := list(id, 1, "L", true)
		l.CreatedAt = base.Add(-age)
		return l
	}
	lists := []models.TaskList{mk(1, 2*time.Hour), mk(2, time.Hour), mk(3, 3*time.Hour)}

	newest := Apply(lists, Criteria{Sort: SortNewest}, 1)
	require.Len(t, newest, 3)
	assert.Equal(t, int64(2), newest[0].ID)
	assert.Equal(t, int64(3), newest[2].ID)

	oldest := Apply(lists, Criteria{Sort: SortOldest}, 1)
	assert.Equal(t, int64(3), oldest[0].ID)
	assert.Equal(t, int64(2), oldest[2].ID)
}

func TestApply_SortTaskCountUsesFallbackCount(t *testing.T) {
	five := 5
	loaded := list(1, 1, "Loaded", true)
	loaded.Tasks = []models.Task{{ID: 1}, {ID: 2}}
	counted := list(2, 1, "Counted", true)
	counted.TasksCount = &five
	empty := list(3, 1, "Empty", true)

	got := Apply([]models.TaskList{loaded, counted, empty}, Criteria{Sort: SortTaskCount}, 1)

	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
}

func TestApply_SortIsStable(t *testing.T) {
	// Identical created_at: ties keep original collection order.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var lists []models.TaskList
	for i := int64(1); i <= 4; i++ {
		l := list(i, 1, "Same", true)
		l.CreatedAt = now
		lists = append(lists, l)
	}

	got := Apply(lists, Criteria{Sort: SortNewest}, 1)

	require.Len(t, got, 4)
	for i, l := range got {
		assert.Equal(t, int64(i+1), l.ID)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	lists := []models.TaskList{
		list(1, 1, "B", true),
		list(2, 1, "A", true),
	}

	Apply(lists, Criteria{Sort: SortTitle}, 1)

	assert.Equal(t, int64(1), lists[0].ID)
	assert.Equal(t, int64(2), lists[1].ID)
}

func TestSummarize(t *testing.T) {
	withTasks := list(1, 1, "Chores", true)
	withTasks.Tasks = []models.Task{
		{ID: 1, IsCompleted: true},
		{ID: 2, IsCompleted: false},
	}
	empty := list(2, 2, "Empty", false)
	empty.Tasks = []models.Task{}

	sum := Summarize([]models.TaskList{withTasks, empty}, 1)

	assert.Equal(t, 2, sum.TotalLists)
	assert.Equal(t, 1, sum.OwnLists)
	assert.Equal(t, 1, sum.PublicLists)
	assert.Equal(t, 2, sum.TotalTasks)
	assert.Equal(t, 1, sum.CompletedTasks)
}

func TestSummarize_CountFallbackAndInvariant(t *testing.T) {
	three := 3
	counted := list(1, 1, "Counted", true)
	counted.TasksCount = &three

	sum := Summarize([]models.TaskList{counted}, 1)

	assert.Equal(t, 3, sum.TotalTasks)
	// Unloaded tasks can never contribute completions.
	assert.LessOrEqual(t, sum.CompletedTasks, sum.TotalTasks)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, 1)

	assert.Zero(t, sum.TotalLists)
	assert.Zero(t, sum.PublicLists)
	assert.Zero(t, sum.TotalTasks)
	assert.Zero(t, sum.CompletedTasks)
}

func TestIsOwner(t *testing.T) {
	assert.True(t, IsOwner(7, 7))
	assert.False(t, IsOwner(7, 8))
	// An anonymous session owns nothing.
	assert.False(t, IsOwner(0, 0))
}
