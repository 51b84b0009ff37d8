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

// DetailView shows one task list with its tasks.
type DetailView struct {
	api     *api.Client
	session *session.Manager
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	listID int64
	list   models.TaskList
	loaded bool
	banner string

	// Blocking error states: 403 renders a permission message without
	// exposing the resource; 404 shows a message and any key navigates
	// back to the lists view.
	forbidden bool
	notFound  bool

	cursor  int
	scrollY int

	// Task create/edit form
	editing      bool
	editingNew   bool
	editTaskID   int64
	formTitle    textinput.Model
	formDesc     textinput.Model
	formFocusIdx int // 0=title, 1=desc, 2=save
	formBanner   string
	fieldErrs    map[string]string
	submitting   bool

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string
}

// NewDetailView creates a detail view for the given list id. The list is
// loaded fresh; a stale summary from the overview is never trusted.
func NewDetailView(client *api.Client, sess *session.Manager, listID int64) *DetailView {
	formTitle := textinput.New()
	formTitle.Placeholder = "Task title"
	formTitle.CharLimit = models.MaxTitleLen

	formDesc := textinput.New()
	formDesc.Placeholder = "Description (optional)"
	formDesc.CharLimit = models.MaxDescriptionLen

	return &DetailView{
		api:       client,
		session:   sess,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		listID:    listID,
		formTitle: formTitle,
		formDesc:  formDesc,
	}
}

func (v *DetailView) Init() tea.Cmd {
	return v.loadList
}

type detailLoadedMsg struct {
	list models.TaskList
}

type detailErrMsg struct {
	err error
}

type taskMutatedMsg struct {
	err error
	// saved marks form submissions, whose failures render inside the
	// still-open form rather than as a page banner.
	saved bool
}

func (v *DetailView) loadList() tea.Msg {
	list, err := v.api.GetTaskList(context.Background(), v.listID)
	if err != nil {
		return detailErrMsg{err: err}
	}
	return detailLoadedMsg{list: list}
}

// isOwner reports whether the current user owns this list. Advisory only:
// it decides which controls render, not what the server will accept.
func (v *DetailView) isOwner() bool {
	return query.IsOwner(v.list.UserID, v.session.UserID())
}

func (v *DetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case detailLoadedMsg:
		v.list = msg.list
		v.loaded = true
		v.banner = ""
		if v.cursor >= len(v.list.Tasks) {
			v.cursor = max(0, len(v.list.Tasks)-1)
		}
		return v, nil

	case detailErrMsg:
		v.loaded = true
		switch {
		case errors.Is(msg.err, api.ErrUnauthorized):
			return v, func() tea.Msg { return SessionExpired{} }
		case errors.Is(msg.err, api.ErrForbidden):
			v.forbidden = true
		case errors.Is(msg.err, api.ErrNotFound):
			v.notFound = true
		default:
			v.banner = "Failed to load task list"
		}
		return v, nil

	case taskMutatedMsg:
		v.submitting = false
		if msg.err != nil {
			return v.handleTaskError(msg.err, msg.saved)
		}
		if msg.saved {
			v.editing = false
		}
		return v, v.loadList

	case tea.KeyMsg:
		if v.notFound {
			// Any key navigates away from the missing resource.
			return v, func() tea.Msg { return BackToLists{} }
		}
		if v.forbidden {
			return v.updateForbidden(msg)
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *DetailView) handleTaskError(err error, saved bool) (tea.Model, tea.Cmd) {
	if errors.Is(err, api.ErrUnauthorized) {
		return v, func() tea.Msg { return SessionExpired{} }
	}
	var verr *api.ValidationError
	if saved && errors.As(err, &verr) {
		v.fieldErrs = verr.FieldMessages()
		return v, nil
	}
	msg := "Failed to update task"
	if errors.Is(err, api.ErrForbidden) {
		msg = "You do not have permission to modify this task"
	}
	if saved {
		v.formBanner = msg
	} else {
		v.banner = msg
	}
	return v, nil
}

func (v *DetailView) updateForbidden(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		return v, func() tea.Msg { return BackToLists{} }
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *DetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToLists{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.list.Tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if v.isOwner() && v.cursor < len(v.list.Tasks) {
			task := v.list.Tasks[v.cursor]
			completed := !task.IsCompleted
			return v, func() tea.Msg {
				_, err := v.api.UpdateTask(context.Background(), task.ID, models.TaskUpdateRequest{
					IsCompleted: &completed,
				})
				return taskMutatedMsg{err: err}
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if v.isOwner() {
			v.startCreate()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.isOwner() && v.cursor < len(v.list.Tasks) {
			v.startEdit(v.list.Tasks[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.isOwner() && v.cursor < len(v.list.Tasks) {
			task := v.list.Tasks[v.cursor]
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadList
	}

	return v, nil
}

func (v *DetailView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, func() tea.Msg {
			return taskMutatedMsg{err: v.api.DeleteTask(context.Background(), id)}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *DetailView) startCreate() {
	v.editing = true
	v.editingNew = true
	v.formFocusIdx = 0
	v.formTitle.Reset()
	v.formDesc.Reset()
	v.formBanner = ""
	v.fieldErrs = nil
	v.updateFormFocus()
}

func (v *DetailView) startEdit(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editTaskID = task.ID
	v.formFocusIdx = 0
	v.formTitle.SetValue(task.Title)
	v.formDesc.SetValue(task.Description)
	v.formBanner = ""
	v.fieldErrs = nil
	v.updateFormFocus()
}

func (v *DetailView) updateFormFocus() {
	v.formTitle.Blur()
	v.formDesc.Blur()
	switch v.formFocusIdx {
	case 0:
		v.formTitle.Focus()
	case 1:
		v.formDesc.Focus()
	}
}

func (v *DetailView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		if !v.submitting {
			v.editing = false
		}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.formFocusIdx = (v.formFocusIdx + 1) % 3
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.formFocusIdx = (v.formFocusIdx + 2) % 3
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.formFocusIdx < 2 {
			v.formFocusIdx++
			v.updateFormFocus()
			return v, nil
		}
		return v, v.saveTask()
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

func (v *DetailView) saveTask() tea.Cmd {
	if v.submitting {
		return nil
	}
	title := strings.TrimSpace(v.formTitle.Value())
	desc := strings.TrimSpace(v.formDesc.Value())

	if errs := models.ValidateTaskForm(title, desc); len(errs) > 0 {
		v.fieldErrs = errs
		return nil
	}
	v.fieldErrs = nil
	v.formBanner = ""
	v.submitting = true

	isNew := v.editingNew
	taskID := v.editTaskID
	listID := v.listID
	return func() tea.Msg {
		var err error
		if isNew {
			_, err = v.api.CreateTask(context.Background(), listID, models.TaskRequest{
				Title:       title,
				Description: desc,
			})
		} else {
			_, err = v.api.UpdateTask(context.Background(), taskID, models.TaskUpdateRequest{
				Title:       &title,
				Description: &desc,
			})
		}
		return taskMutatedMsg{err: err, saved: true}
	}
}

func (v *DetailView) ensureVisible() {
	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
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
func (v *DetailView) View() string {
	if v.notFound {
		return v.renderBlockingMessage("Task list not found", "Press any key to go back")
	}
	if v.forbidden {
		return v.renderBlockingMessage(
			"You do not have permission to view this task list",
			"Esc: back • q: quit",
		)
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
	b.WriteString("\n\n")
	b.WriteString(v.renderTasks())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *DetailView) renderBlockingMessage(title, hint string) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(hint),
	)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *DetailView) renderHeader() string {
	s := v.styles

	badge := s.BadgePrivate.Render("private")
	if v.list.IsPublic {
		badge = s.BadgePublic.Render("public")
	}

	owner := ""
	if v.isOwner() {
		owner = s.BadgeOwner.Render("you")
	} else if v.list.User != nil {
		owner = s.BadgeOwner.Render("@" + v.list.User.Username)
	}

	total := len(v.list.Tasks)
	completed := v.list.CompletedTaskCount()

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.Title.Render(v.list.Title),
			"  ",
			badge,
			"  ",
			owner,
		),
	}
	if v.list.Description != "" {
		rows = append(rows, s.TitleMuted.Render(v.list.Description))
	}
	rows = append(rows, s.StatusBar.Render(
		fmt.Sprintf("%d tasks · %d done · %d pending", total, completed, total-completed),
	))
	if v.banner != "" {
		rows = append(rows, s.ErrorBanner.Render(v.banner))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DetailView) renderTasks() string {
	s := v.styles
	if len(v.list.Tasks) == 0 {
		if v.isOwner() {
			return s.TitleMuted.Render("No tasks yet. Press 'n' to add one.")
		}
		return s.TitleMuted.Render("No tasks yet.")
	}

	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	end := min(v.scrollY+visibleItems, len(v.list.Tasks))

	var b strings.Builder
	for i := v.scrollY; i < end; i++ {
		b.WriteString(v.renderTask(v.list.Tasks[i], i == v.cursor))
		b.WriteString("\n")
	}
	if end < len(v.list.Tasks) {
		b.WriteString(s.TitleMuted.Render(fmt.Sprintf("  … %d more", len(v.list.Tasks)-end)))
	}
	return b.String()
}

func (v *DetailView) renderTask(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	check := "[ ]"
	titleStyle := s.TaskPending
	if task.IsCompleted {
		check = s.Checkbox.Render("[x]")
		titleStyle = s.TaskDone
	}

	line := fmt.Sprintf("%s %s", check, titleStyle.Render(task.Title))
	if selected {
		line = s.ListSelected.Width(width).Render(line)
	} else {
		line = s.ListItem.Width(width).Render(line)
	}

	desc := ""
	if task.Description != "" {
		desc = s.ListMeta.Render(task.Description)
	}
	return line + "\n" + desc
}

func (v *DetailView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button
	switch v.formFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
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

func (v *DetailView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be deleted.", v.deleteTargetName)),
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

func (v *DetailView) renderHelp() string {
	if !v.isOwner() {
		return v.styles.Help.Render(
			fmt.Sprintf("%s back • %s refresh • %s quit",
				v.styles.HelpKey.Render("esc"),
				v.styles.HelpKey.Render("r"),
				v.styles.HelpKey.Render("q"),
			),
		)
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s edit • %s del • %s back • %s quit",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
