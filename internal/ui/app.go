package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewAuth View = iota
	ViewLists
	ViewDetail
	ViewProfile
)

const lastListKey = "last_list_id"

// App routes between the views and owns the session lifecycle transitions.
type App struct {
	client  *api.Client
	session *session.Manager
	store   *session.Store

	currentView View
	auth        *views.AuthView
	lists       *views.ListsView
	detail      *views.DetailView
	profile     *views.ProfileView
	width       int
	height      int
}

// NewApp creates the application model. The session starts Unknown; Init
// resolves it before any protected view renders.
func NewApp(client *api.Client, sess *session.Manager, store *session.Store) *App {
	return &App{
		client:  client,
		session: sess,
		store:   store,
		auth:    views.NewAuthView(sess),
		lists:   views.NewListsView(client, sess),
	}
}

type sessionRestoredMsg struct {
	state session.State
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.auth.Init(),
		func() tea.Msg {
			return sessionRestoredMsg{state: a.session.Restore()}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Every live view gets the new size; the inactive ones keep it for
		// when they come back.
		a.auth.Update(msg)
		a.lists.Update(msg)
		if a.detail != nil {
			a.detail.Update(msg)
		}
		if a.profile != nil {
			a.profile.Update(msg)
		}

	case sessionRestoredMsg:
		if msg.state == session.StateAuthenticated {
			a.currentView = ViewLists
			cmds := []tea.Cmd{a.lists.Init(), a.sizeCmd()}
			// Reopen the last viewed list, like a session that never ended.
			if raw, err := a.store.GetSetting(lastListKey); err == nil && raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
					return a, tea.Batch(append(cmds, a.openListID(id))...)
				}
			}
			return a, tea.Batch(cmds...)
		}
		a.currentView = ViewAuth
		return a, nil

	case views.LoggedIn:
		a.currentView = ViewLists
		a.lists = views.NewListsView(a.client, a.session)
		return a, tea.Batch(a.lists.Init(), a.sizeCmd())

	case views.LoggedOut:
		a.toAuth("")
		return a, nil

	case views.SessionExpired:
		a.session.Invalidate()
		a.toAuth("Your session has expired. Please sign in again.")
		return a, nil

	case views.OpenList:
		a.store.SetSetting(lastListKey, strconv.FormatInt(msg.List.ID, 10))
		return a, a.openListID(msg.List.ID)

	case views.BackToLists:
		a.currentView = ViewLists
		a.detail = nil
		a.store.SetSetting(lastListKey, "")
		return a, tea.Batch(a.lists.Init(), a.sizeCmd())

	case views.OpenProfile:
		a.currentView = ViewProfile
		a.profile = views.NewProfileView(a.session)
		return a, tea.Batch(a.profile.Init(), a.sizeCmd())

	case views.BackFromProfile:
		a.currentView = ViewLists
		a.profile = nil
		return a, tea.Batch(a.lists.Init(), a.sizeCmd())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewAuth:
		_, cmd = a.auth.Update(msg)
	case ViewLists:
		_, cmd = a.lists.Update(msg)
	case ViewDetail:
		if a.detail != nil {
			_, cmd = a.detail.Update(msg)
		}
	case ViewProfile:
		if a.profile != nil {
			_, cmd = a.profile.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) openListID(id int64) tea.Cmd {
	a.currentView = ViewDetail
	a.detail = views.NewDetailView(a.client, a.session, id)
	return tea.Batch(a.detail.Init(), a.sizeCmd())
}

func (a *App) toAuth(notice string) {
	a.currentView = ViewAuth
	a.auth = views.NewAuthView(a.session)
	if notice != "" {
		a.auth.SetNotice(notice)
	}
	a.detail = nil
	a.profile = nil
}

func (a *App) sizeCmd() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) View() string {
	switch a.currentView {
	case ViewLists:
		return a.lists.View()
	case ViewDetail:
		if a.detail != nil {
			return a.detail.View()
		}
	case ViewProfile:
		if a.profile != nil {
			return a.profile.View()
		}
	}
	return a.auth.View()
}
