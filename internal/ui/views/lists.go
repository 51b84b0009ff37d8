package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/query"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/ui/keys"
	"github.com/taskdeck/taskdeck/internal/ui/styles"
)

var ownershipOptions = []struct {
	value query.Ownership
	label string
}{
	{query.OwnershipAll, "All Lists"},
	{query.OwnershipOwn, "My Lists"},
	{query.OwnershipShared, "Shared with me"},
	{query.OwnershipPublic, "Public Lists"},
	{query.OwnershipPrivate, "Private Lists"},
}

var sortOptions = []struct {
	value query.SortKey
	label string
}{
	{query.SortNewest, "Newest First"},
	{query.SortOldest, "Oldest First"},
	{query.SortTitle, "Title (A-Z)"},
	{query.SortTaskCount, "Most Tasks"},
}

// ListsView is the overview of every task list visible to the session.
type ListsView struct {
	api     *api.Client
	session *session.Manager
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	lists   []models.TaskList
	visible []models.TaskList
	loaded  bool
	banner  string

	search        textinput.Model
	searchFocused bool
	ownership     query.Ownership
	sortKey       query.SortKey

	filterOpen   bool
	filterCursor int
	sortOpen     bool
	sortCursor   int

	cursor  int
	scrollY int

	// Create/edit form
	editing      bool
	editingNew   bool
	editID       int64
	formTitle    textinput.Model
	formDesc     textinput.Model
	formPublic   bool
	formFocusIdx int // 0=title, 1=desc, 2=public, 3=save
	formBanner   string
	fieldErrs    map[string]string
	submitting   bool

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelpPopup bool
}

// NewListsView creates the lists overview.
func NewListsView(client *api.Client, sess *session.Manager) *ListsView {
	search := textinput.New()
	search.Placeholder = "Search task lists..."
	search.CharLimit = 100

	formTitle := textinput.New()
	formTitle.Placeholder = "List title"
	formTitle.CharLimit = models.MaxTitleLen

	formDesc := textinput.New()
	formDesc.Placeholder = "Description (optional)"
	formDesc.CharLimit = models.MaxDescriptionLen

	return &ListsView{
		api:       client,
		session:   sess,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		search:    search,
		ownership: query.OwnershipAll,
		sortKey:   query.SortNewest,
		formTitle: formTitle,
		formDesc:  formDesc,
	}
}

func (v *ListsView) Init() tea.Cmd {
	return v.loadLists
}

type listsLoadedMsg struct {
	lists []models.TaskList
}

type listsErrMsg struct {
	err error
}

type listSavedMsg struct {
	err error
}

type listDeletedMsg struct {
	err error
}

func (v *ListsView) loadLists() tea.Msg {
	lists, err := v.api.ListTaskLists(context.Background())
	if err != nil {
		return listsErrMsg{err: err}
	}
	return listsLoadedMsg{lists: lists}
}

// applyQuery rebuilds the visible subset from the full collection and the
// current criteria.
func (v *ListsView) applyQuery() {
	v.visible = query.Apply(v.lists, query.Criteria{
		Search:    v.search.Value(),
		Ownership: v.ownership,
		Sort:      v.sortKey,
	}, v.session.UserID())
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
}

func (v *ListsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case listsLoadedMsg:
		v.lists = msg.lists
		v.loaded = true
		v.banner = ""
		v.applyQuery()
		return v, nil

	case listsErrMsg:
		v.loaded = true
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return v, func() tea.Msg { return SessionExpired{} }
		}
		v.banner = "Failed to fetch task lists"
		return v, nil

	case listSavedMsg:
		v.submitting = false
		if msg.err != nil {
			return v.handleSaveError(msg.err)
		}
		v.editing = false
		return v, v.loadLists

	case listDeletedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return v, func() tea.Msg { return SessionExpired{} }
			}
			if errors.Is(msg.err, api.ErrForbidden) {
				v.banner = "You do not have permission to delete this list"
			} else {
				v.banner = "Failed to delete task list"
			}
			return v, nil
		}
		return v, v.loadLists

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.filterOpen {
			return v.updateFilterDropdown(msg)
		}
		if v.sortOpen {
			return v.updateSortDropdown(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ListsView) handleSaveError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, api.ErrUnauthorized) {
		return v, func() tea.Msg { return SessionExpired{} }
	}
	// The form stays open and shows the failure inline.
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		v.fieldErrs = verr.FieldMessages()
		return v, nil
	}
	if errors.Is(err, api.ErrForbidden) {
		v.formBanner = "You do not have permission to edit this list"
		return v, nil
	}
	v.formBanner = "Failed to save task list"
	return v, nil
}

func (v *ListsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.searchFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.search.Blur()
			v.searchFocused = false
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.search.Blur()
			v.searchFocused = false
			v.applyQuery()
			return v, nil
		default:
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(msg)
			v.applyQuery()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.cursor < len(v.visible) {
			list := v.visible[v.cursor]
			return v, func() tea.Msg { return OpenList{List: list} }
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if v.cursor < len(v.visible) {
			list := v.visible[v.cursor]
			// Affordance only; the server independently rejects
			// unauthorized mutations.
			if query.IsOwner(list.UserID, v.session.UserID()) {
				v.startEdit(list)
				return v, textinput.Blink
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.cursor < len(v.visible) {
			list := v.visible[v.cursor]
			if query.IsOwner(list.UserID, v.session.UserID()) {
				v.confirmingDelete = true
				v.deleteTargetID = list.ID
				v.deleteTargetName = list.Title
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searchFocused = true
		v.search.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.filterOpen = true
		v.filterCursor = v.currentFilterIndex()
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		v.sortOpen = true
		v.sortCursor = v.currentSortIndex()
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadLists

	case key.Matches(msg, v.keys.Profile):
		return v, func() tea.Msg { return OpenProfile{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *ListsView) currentFilterIndex() int {
	for i, o := range ownershipOptions {
		if o.value == v.ownership {
			return i
		}
	}
	return 0
}

func (v *ListsView) currentSortIndex() int {
	for i, o := range sortOptions {
		if o.value == v.sortKey {
			return i
		}
	}
	return 0
}

func (v *ListsView) updateFilterDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.filterOpen = false
	case key.Matches(msg, v.keys.Up):
		if v.filterCursor > 0 {
			v.filterCursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.filterCursor < len(ownershipOptions)-1 {
			v.filterCursor++
		}
	case key.Matches(msg, v.keys.Enter):
		v.ownership = ownershipOptions[v.filterCursor].value
		v.filterOpen = false
		v.cursor = 0
		v.scrollY = 0
		v.applyQuery()
	}
	return v, nil
}

func (v *ListsView) updateSortDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.sortOpen = false
	case key.Matches(msg, v.keys.Up):
		if v.sortCursor > 0 {
			v.sortCursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.sortCursor < len(sortOptions)-1 {
			v.sortCursor++
		}
	case key.Matches(msg, v.keys.Enter):
		v.sortKey = sortOptions[v.sortCursor].value
		v.sortOpen = false
		v.applyQuery()
	}
	return v, nil
}

func (v *ListsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, func() tea.Msg {
			return listDeletedMsg{err: v.api.DeleteTaskList(context.Background(), id)}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ListsView) startCreate() {
	v.editing = true
	v.editingNew = true
	v.formFocusIdx = 0
	v.formTitle.Reset()
	v.formDesc.Reset()
	v.formPublic = false
	v.formBanner = ""
	v.fieldErrs = nil
	v.updateFormFocus()
}

func (v *ListsView) startEdit(list models.TaskList) {
	v.editing = true
	v.editingNew = false
	v.editID = list.ID
	v.formFocusIdx = 0
	v.formTitle.SetValue(list.Title)
	v.formDesc.SetValue(list.Description)
	v.formPublic = list.IsPublic
	v.formBanner = ""
	v.fieldErrs = nil
	v.updateFormFocus()
}

func (v *ListsView) updateFormFocus() {
	v.formTitle.Blur()
	v.formDesc.Blur()
	switch v.formFocusIdx {
	case 0:
		v.formTitle.Focus()
	case 1:
		v.formDesc.Focus()
	}
}

func (v *ListsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		if !v.submitting {
			v.editing = false
		}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveList()

	case key.Matches(msg, v.keys.Tab):
		v.formFocusIdx = (v.formFocusIdx + 1) % 4
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.formFocusIdx = (v.formFocusIdx + 3) % 4
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.formFocusIdx {
		case 0, 1:
			v.formFocusIdx++
			v.updateFormFocus()
		case 2:
			v.formPublic = !v.formPublic
		case 3:
			return v, v.saveList()
		}
		return v, nil

	case msg.String() == " ":
		if v.formFocusIdx == 2 {
			v.formPublic = !v.formPublic
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.formFocusIdx {
	case 0:
		v.formTitle, cmd = v.formTitle.Update(msg)
	case 1:
		v.formDesc, cmd = v.formDesc.Update(msg)
	}
	return v, cmd
}

func (v *ListsView) saveList() tea.Cmd {
	if v.submitting {
		return nil
	}
	title := strings.TrimSpace(v.formTitle.Value())
	desc := strings.TrimSpace(v.formDesc.Value())

	if errs := models.ValidateListForm(title, desc); len(errs) > 0 {
		v.fieldErrs = errs
		return nil
	}
	v.fieldErrs = nil
	v.formBanner = ""
	v.submitting = true

	req := models.TaskListRequest{Title: title, Description: desc, IsPublic: v.formPublic}
	isNew := v.editingNew
	id := v.editID
	return func() tea.Msg {
		var err error
		if isNew {
			_, err = v.api.CreateTaskList(context.Background(), req)
		} else {
			_, err = v.api.UpdateTaskList(context.Background(), id, req)
		}
		return listSavedMsg{err: err}
	}
}

func (v *ListsView) ensureVisible() {
	// Each list entry renders as 2 lines plus a blank separator.
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *ListsView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.renderStats())
	b.WriteString("\n\n")
	b.WriteString(v.renderList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ListsView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	searchStyle := s.Input
	if v.searchFocused {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-40, 12, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.search.View())

	filterLabel := ownershipOptions[v.currentFilterIndex()].label
	sortLabel := sortOptions[v.currentSortIndex()].label

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render("Task Lists"),
		"  ",
		searchBox,
		" ",
		s.Button.Render(filterLabel),
		" ",
		s.Button.Render(sortLabel),
	)

	if v.banner != "" {
		header += "\n" + s.ErrorBanner.Render(v.banner)
	}

	if v.filterOpen {
		header += "\n" + v.renderDropdown("Filter by", ownershipLabels(), v.filterCursor)
	}
	if v.sortOpen {
		header += "\n" + v.renderDropdown("Sort by", sortLabels(), v.sortCursor)
	}
	return header
}

func ownershipLabels() []string {
	out := make([]string, len(ownershipOptions))
	for i, o := range ownershipOptions {
		out[i] = o.label
	}
	return out
}

func sortLabels() []string {
	out := make([]string, len(sortOptions))
	for i, o := range sortOptions {
		out[i] = o.label
	}
	return out
}

func (v *ListsView) renderDropdown(title string, options []string, cursor int) string {
	s := v.styles
	rows := []string{s.TitleMuted.Render(title)}
	for i, label := range options {
		if i == cursor {
			rows = append(rows, s.ListSelected.Render(label))
		} else {
			rows = append(rows, s.ListItem.Render(label))
		}
	}
	return s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *ListsView) renderStats() string {
	s := v.styles
	sum := query.Summarize(v.lists, v.session.UserID())
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.StatChip.Render(fmt.Sprintf("Total: %d", sum.TotalLists)),
		s.StatChip.Render(fmt.Sprintf("My Lists: %d", sum.OwnLists)),
		s.StatChip.Render(fmt.Sprintf("Public: %d", sum.PublicLists)),
		s.StatChip.Render(fmt.Sprintf("Tasks: %d/%d done", sum.CompletedTasks, sum.TotalTasks)),
	)
}

func (v *ListsView) renderList() string {
	s := v.styles
	if len(v.visible) == 0 {
		if strings.TrimSpace(v.search.Value()) != "" {
			return s.TitleMuted.Render("No task lists found matching your search.")
		}
		return s.TitleMuted.Render("No task lists available. Press 'n' to create your first one!")
	}

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}
	end := min(v.scrollY+visibleItems, len(v.visible))

	var b strings.Builder
	for i := v.scrollY; i < end; i++ {
		b.WriteString(v.renderListEntry(v.visible[i], i == v.cursor))
		b.WriteString("\n")
	}
	if end < len(v.visible) {
		b.WriteString(s.TitleMuted.Render(fmt.Sprintf("  … %d more", len(v.visible)-end)))
	}
	return b.String()
}

func (v *ListsView) renderListEntry(list models.TaskList, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	titleStyle := s.ListItem
	if selected {
		titleStyle = s.ListSelected
	}

	badge := s.BadgePrivate.Render("private")
	if list.IsPublic {
		badge = s.BadgePublic.Render("public")
	}

	owner := ""
	if query.IsOwner(list.UserID, v.session.UserID()) {
		owner = s.BadgeOwner.Render("you")
	} else if list.User != nil {
		owner = s.BadgeOwner.Render("@" + list.User.Username)
	}

	title := titleStyle.Width(width).Render(list.Title)
	meta := s.ListMeta.Render(fmt.Sprintf("%s · %s · %d tasks", badge, owner, list.TaskCount()))

	return title + "\n" + meta + "\n"
}

func (v *ListsView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "New Task List"
	if !v.editingNew {
		formTitle = "Edit Task List"
	}

	titleStyle := s.Input
	descStyle := s.Input
	publicStyle := s.Button
	btnStyle := s.Button
	switch v.formFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		publicStyle = s.ButtonFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	publicLabel := "[ ] Public"
	if v.formPublic {
		publicLabel = "[x] Public"
	}
	saveLabel := " Save "
	if v.submitting {
		saveLabel = " Saving... "
	}

	rows := []string{s.Title.Render(formTitle), ""}
	if v.formBanner != "" {
		rows = append(rows, s.ErrorBanner.Render(v.formBanner), "")
	}
	rows = append(rows, "Title:", titleStyle.Width(inputWidth).Render(v.formTitle.View()))
	if msg, ok := v.fieldErrs["title"]; ok {
		rows = append(rows, s.FieldError.Render(msg))
	}
	rows = append(rows, "", "Description:", descStyle.Width(inputWidth).Render(v.formDesc.View()))
	if msg, ok := v.fieldErrs["description"]; ok {
		rows = append(rows, s.FieldError.Render(msg))
	}
	rows = append(rows,
		"",
		publicStyle.Render(publicLabel),
		"",
		btnStyle.Render(saveLabel),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ListsView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task List?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and all its tasks will be deleted.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ListsView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s search • %s filter • %s sort • %s profile • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("p"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ListsView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open list",
		s.HelpKey.Render("n") + "      new list",
		s.HelpKey.Render("e") + "      edit list (owner only)",
		s.HelpKey.Render("d") + "      delete list (owner only)",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("f") + "      ownership filter",
		s.HelpKey.Render("s") + "      sort",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("p") + "      profile",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
