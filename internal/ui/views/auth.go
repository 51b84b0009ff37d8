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

// AuthView is the login/registration screen shown while anonymous.
type AuthView struct {
	session *session.Manager
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int

	registering bool
	focusIdx    int

	// Login fields
	email    textinput.Model
	password textinput.Model

	// Registration fields
	regName     textinput.Model
	regUsername textinput.Model
	regEmail    textinput.Model
	regPassword textinput.Model
	regConfirm  textinput.Model

	// The submit button is disabled while a call is outstanding; the API
	// provides no request deduplication, so re-entry is blocked here.
	submitting bool

	banner    string
	notice    string
	fieldErrs map[string]string
}

// NewAuthView creates the auth screen in login mode.
func NewAuthView(sess *session.Manager) *AuthView {
	newInput := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 255
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		return ti
	}

	v := &AuthView{
		session:     sess,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		email:       newInput("Email", false),
		password:    newInput("Password", true),
		regName:     newInput("Name", false),
		regUsername: newInput("Username", false),
		regEmail:    newInput("Email", false),
		regPassword: newInput("Password (min 8 chars)", true),
		regConfirm:  newInput("Confirm password", true),
	}
	v.email.Focus()
	return v
}

// SetNotice shows an informational line above the form, e.g. after a forced
// re-authentication.
func (v *AuthView) SetNotice(msg string) {
	v.notice = msg
}

func (v *AuthView) Init() tea.Cmd {
	return textinput.Blink
}

type authResultMsg struct {
	result session.Result
}

// fieldCount is the number of focusable elements in the current mode:
// inputs, then submit, then the mode-switch link.
func (v *AuthView) fieldCount() int {
	if v.registering {
		return 7
	}
	return 4
}

func (v *AuthView) inputs() []*textinput.Model {
	if v.registering {
		return []*textinput.Model{&v.regName, &v.regUsername, &v.regEmail, &v.regPassword, &v.regConfirm}
	}
	return []*textinput.Model{&v.email, &v.password}
}

func (v *AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case authResultMsg:
		v.submitting = false
		if msg.result.OK {
			return v, func() tea.Msg { return LoggedIn{} }
		}
		// Entered values stay put on failure; only the errors change.
		v.banner = msg.result.Error
		v.fieldErrs = msg.result.FieldErrors
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return v, tea.Quit

		case key.Matches(msg, v.keys.Tab):
			v.moveFocus(1)
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.moveFocus(-1)
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Enter):
			inputs := v.inputs()
			if v.focusIdx < len(inputs) {
				v.moveFocus(1)
				return v, textinput.Blink
			}
			if v.focusIdx == len(inputs) {
				return v, v.submit()
			}
			// Mode-switch link
			v.switchMode()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	inputs := v.inputs()
	if v.focusIdx < len(inputs) {
		*inputs[v.focusIdx], cmd = inputs[v.focusIdx].Update(msg)
	}
	return v, cmd
}

func (v *AuthView) moveFocus(dir int) {
	n := v.fieldCount()
	v.focusIdx = (v.focusIdx + dir + n) % n
	v.updateFocus()
}

func (v *AuthView) updateFocus() {
	inputs := v.inputs()
	for i, in := range inputs {
		if i == v.focusIdx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (v *AuthView) switchMode() {
	v.registering = !v.registering
	v.focusIdx = 0
	v.banner = ""
	v.fieldErrs = nil
	v.updateFocus()
}

func (v *AuthView) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	v.banner = ""

	if v.registering {
		req := models.RegisterRequest{
			Name:                 strings.TrimSpace(v.regName.Value()),
			Username:             strings.TrimSpace(v.regUsername.Value()),
			Email:                strings.TrimSpace(v.regEmail.Value()),
			Password:             v.regPassword.Value(),
			PasswordConfirmation: v.regConfirm.Value(),
		}
		if errs := models.ValidateRegistration(req); len(errs) > 0 {
			v.fieldErrs = errs
			return nil
		}
		v.fieldErrs = nil
		v.submitting = true
		return func() tea.Msg {
			return authResultMsg{result: v.session.Register(context.Background(), req)}
		}
	}

	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if errs := models.ValidateLogin(email, password); len(errs) > 0 {
		v.fieldErrs = errs
		return nil
	}
	v.fieldErrs = nil
	v.submitting = true
	return func() tea.Msg {
		return authResultMsg{result: v.session.Login(context.Background(), email, password)}
	}
}

// View renders the view
func (v *AuthView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 46)

	title := "Sign In"
	switchLabel := "Need an account? Register"
	if v.registering {
		title = "Create Account"
		switchLabel = "Have an account? Sign in"
	}

	rows := []string{s.Title.Render(title), ""}

	if v.notice != "" {
		rows = append(rows, s.InfoBanner.Render(v.notice), "")
	}
	if v.banner != "" {
		rows = append(rows, s.ErrorBanner.Render(v.banner), "")
	}

	labels := []string{"Email:", "Password:"}
	fieldKeys := []string{"email", "password"}
	if v.registering {
		labels = []string{"Name:", "Username:", "Email:", "Password:", "Confirm password:"}
		fieldKeys = []string{"name", "username", "email", "password", "password_confirmation"}
	}

	inputs := v.inputs()
	for i, in := range inputs {
		style := s.Input
		if v.focusIdx == i {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(in.View()))
		if msg, ok := v.fieldErrs[fieldKeys[i]]; ok {
			rows = append(rows, s.FieldError.Render(msg))
		}
	}

	submitLabel := " Submit "
	if v.submitting {
		submitLabel = " Submitting... "
	}
	btnStyle := s.Button
	if v.focusIdx == len(inputs) {
		btnStyle = s.ButtonFocused
	}
	switchStyle := s.TitleMuted
	if v.focusIdx == len(inputs)+1 {
		switchStyle = s.Title
	}

	rows = append(rows,
		"",
		btnStyle.Render(submitLabel),
		"",
		switchStyle.Render(switchLabel),
		"",
		s.TitleMuted.Render("Tab: next • ↵: submit • Ctrl+C: quit"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
