package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/ui/keys"
	"github.com/taskdeck/taskdeck/internal/ui/styles"
)

// ProfileView shows the current user and lets them edit their profile or
// log out.
type ProfileView struct {
	session *session.Manager
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	name     textinput.Model
	username textinput.Model
	email    textinput.Model
	focusIdx int // 0=name, 1=username, 2=email, 3=save

	submitting bool
	banner     string
	success    string
	fieldErrs  map[string]string
}

// NewProfileView creates the profile screen prefilled from the session.
func NewProfileView(sess *session.Manager) *ProfileView {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = models.MaxTitleLen
		return ti
	}

	v := &ProfileView{
		session:  sess,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		name:     newInput("Name"),
		username: newInput("Username"),
		email:    newInput("Email"),
	}
	if user := sess.User(); user != nil {
		v.name.SetValue(user.Name)
		v.username.SetValue(user.Username)
		v.email.SetValue(user.Email)
	}
	v.name.Focus()
	return v
}

func (v *ProfileView) Init() tea.Cmd {
	return textinput.Blink
}

type profileResultMsg struct {
	result session.Result
}

type loggedOutMsg struct{}

func (v *ProfileView) inputs() []*textinput.Model {
	return []*textinput.Model{&v.name, &v.username, &v.email}
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case profileResultMsg:
		v.submitting = false
		if msg.result.OK {
			v.banner = ""
			v.fieldErrs = nil
			v.success = "Profile updated"
			return v, nil
		}
		// Failure leaves the form open and the entered values intact.
		v.success = ""
		v.banner = msg.result.Error
		v.fieldErrs = msg.result.FieldErrors
		return v, nil

	case loggedOutMsg:
		return v, func() tea.Msg { return LoggedOut{} }

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			if !v.submitting {
				return v, func() tea.Msg { return BackFromProfile{} }
			}
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.moveFocus(1)
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.moveFocus(-1)
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Save):
			return v, v.save()

		case msg.String() == "ctrl+l":
			return v, v.logout()

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < len(v.inputs()) {
				v.moveFocus(1)
				return v, textinput.Blink
			}
			return v, v.save()
		}
	}

	var cmd tea.Cmd
	inputs := v.inputs()
	if v.focusIdx < len(inputs) {
		*inputs[v.focusIdx], cmd = inputs[v.focusIdx].Update(msg)
	}
	return v, cmd
}

func (v *ProfileView) moveFocus(dir int) {
	v.focusIdx = (v.focusIdx + dir + 4) % 4
	inputs := v.inputs()
	for i, in := range inputs {
		if i == v.focusIdx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (v *ProfileView) save() tea.Cmd {
	if v.submitting {
		return nil
	}
	req := models.ProfileRequest{
		Name:     strings.TrimSpace(v.name.Value()),
		Username: strings.TrimSpace(v.username.Value()),
		Email:    strings.TrimSpace(v.email.Value()),
	}
	if errs := models.ValidateProfile(req); len(errs) > 0 {
		v.fieldErrs = errs
		v.success = ""
		return nil
	}
	v.fieldErrs = nil
	v.banner = ""
	v.success = ""
	v.submitting = true
	return func() tea.Msg {
		return profileResultMsg{result: v.session.UpdateProfile(context.Background(), req)}
	}
}

func (v *ProfileView) logout() tea.Cmd {
	if v.submitting {
		return nil
	}
	v.submitting = true
	return func() tea.Msg {
		v.session.Logout(context.Background())
		return loggedOutMsg{}
	}
}

// View renders the view
func (v *ProfileView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 46)

	rows := []string{s.Title.Render("Profile"), ""}

	if user := v.session.User(); user != nil {
		rows = append(rows, s.TitleMuted.Render(
			"Member since "+user.CreatedAt.Format("January 2, 2006"),
		), "")
	}
	if v.banner != "" {
		rows = append(rows, s.ErrorBanner.Render(v.banner), "")
	}
	if v.success != "" {
		rows = append(rows, s.SuccessBanner.Render(v.success), "")
	}

	labels := []string{"Name:", "Username:", "Email:"}
	fieldKeys := []string{"name", "username", "email"}
	for i, in := range v.inputs() {
		style := s.Input
		if v.focusIdx == i {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(in.View()))
		if msg, ok := v.fieldErrs[fieldKeys[i]]; ok {
			rows = append(rows, s.FieldError.Render(msg))
		}
	}

	saveLabel := " Save "
	if v.submitting {
		saveLabel = " Saving... "
	}
	btnStyle := s.Button
	if v.focusIdx == 3 {
		btnStyle = s.ButtonFocused
	}

	rows = append(rows,
		"",
		btnStyle.Render(saveLabel),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Ctrl+L: log out • Esc: back"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
