package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/callmeback/callbackd/internal/api"
	"github.com/callmeback/callbackd/internal/call"
	"github.com/callmeback/callbackd/internal/config"
	"github.com/callmeback/callbackd/internal/model"
	"github.com/callmeback/callbackd/internal/notify"
	"github.com/callmeback/callbackd/internal/storage"
)

type Screen string

const (
	ScreenLogin       Screen = "login"
	ScreenSignup      Screen = "signup"
	ScreenHome        Screen = "home"
	ScreenAddReminder Screen = "add"
	ScreenCall        Screen = "call"
	ScreenAccount     Screen = "account"
	ScreenHelp        Screen = "help"
)

// Backend is the slice of the REST client the screens call.
type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) (string, model.User, error)
	Login(ctx context.Context, req api.LoginRequest) (string, model.User, error)
	PlanStatus(ctx context.Context, token string) (api.PlanStatus, error)
	CreateReminder(ctx context.Context, token string, req api.CreateReminderRequest) (model.Reminder, error)
	ListReminders(ctx context.Context, token string) ([]model.Reminder, error)
	DeleteReminder(ctx context.Context, token, id string) error
	CompleteReminder(ctx context.Context, token, id string) error
}

// SessionStore is the slice of the session provider the screens use.
type SessionStore interface {
	Token() string
	User() (model.User, bool)
	SetCredentials(token string, user model.User) error
	Clear() error
}

// ReminderCache persists the last fetched reminder list for offline display.
type ReminderCache interface {
	ReplaceReminderCache(ctx context.Context, reminders []storage.CachedReminder) error
	ListCachedReminders(ctx context.Context) ([]storage.CachedReminder, error)
}

// Deps is everything the TUI model needs wired in from main.
type Deps struct {
	Config     *config.Config
	Log        zerolog.Logger
	Backend    Backend
	Session    SessionStore
	Cache      ReminderCache
	Dialer     call.Dialer
	Deliveries <-chan notify.Delivery
}

type StatusBar struct {
	Text    string
	IsError bool
}

type authState struct {
	nameInput     textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	focus         int
	busy          bool
	errText       string
}

type formState struct {
	nameInput  textinput.Model
	phoneInput textinput.Model
	whenInput  textinput.Model
	descArea   textarea.Model
	focus      int
	busy       bool
	errText    string
}

type homeState struct {
	reminders  []model.Reminder
	fromCache  bool
	refreshing bool
}

type callState struct {
	session      *call.Session
	seq          int
	focusDecline bool
	pulse        float64
	dialing      bool
	dialErr      string
}

type accountState struct {
	plan    api.PlanStatus
	loaded  bool
	loading bool
}

type paletteState struct {
	active bool
	input  textinput.Model
}

type Model struct {
	deps   Deps
	screen Screen

	Auth    authState
	Form    formState
	Home    homeState
	Call    callState
	Account accountState
	Palette paletteState

	Banner   *notify.Delivery
	Status   StatusBar
	Quitting bool

	reminderList list.Model
	spinner      spinner.Model
	helpModel    help.Model
	helpViewport viewport.Model
	keys         keyMap
	now          func() time.Time
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type keyMap struct {
	Add     key.Binding
	Refresh key.Binding
	Delete  key.Binding
	Call    key.Binding
	Open    key.Binding
	Account key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Refresh, k.Delete, k.Call, k.Open, k.Account, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add reminder")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Call:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "open call for selection")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open notification")),
		Account: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "account")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func NewModel(deps Deps) Model {
	if deps.Config == nil {
		cfg := config.Config{}
		deps.Config = &cfg
	}
	if deps.Dialer == nil {
		deps.Dialer = call.NoopDialer{}
	}

	m := Model{
		deps:   deps,
		screen: ScreenLogin,
		keys:   defaultKeyMap(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if _, ok := deps.Session.User(); ok {
		m.screen = ScreenHome
	}
	m.initComponents()
	return m
}

func (m *Model) initComponents() {
	m.reminderList = list.New([]list.Item{}, list.NewDefaultDelegate(), 64, 12)
	m.reminderList.Title = "Upcoming calls"
	m.reminderList.SetShowHelp(false)
	m.reminderList.SetFilteringEnabled(false)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.helpViewport = viewport.New(64, 14)

	m.Palette.input = textinput.New()
	m.Palette.input.Prompt = "/"
	m.Palette.input.CharLimit = 256
	m.Palette.input.Width = 56

	m.Auth = newAuthState(false)
	m.Form = newFormState()
}

func newAuthState(signup bool) authState {
	s := authState{}
	s.nameInput = textinput.New()
	s.nameInput.Prompt = "name> "
	s.nameInput.CharLimit = 128
	s.nameInput.Width = 40

	s.emailInput = textinput.New()
	s.emailInput.Prompt = "email> "
	s.emailInput.CharLimit = 128
	s.emailInput.Width = 40

	s.passwordInput = textinput.New()
	s.passwordInput.Prompt = "password> "
	s.passwordInput.CharLimit = 128
	s.passwordInput.Width = 40
	s.passwordInput.EchoMode = textinput.EchoPassword

	if signup {
		s.nameInput.Focus()
	} else {
		s.emailInput.Focus()
	}
	return s
}

func newFormState() formState {
	s := formState{}
	s.nameInput = textinput.New()
	s.nameInput.Prompt = "who> "
	s.nameInput.CharLimit = 128
	s.nameInput.Width = 40
	s.nameInput.Focus()

	s.phoneInput = textinput.New()
	s.phoneInput.Prompt = "phone> "
	s.phoneInput.CharLimit = 32
	s.phoneInput.Width = 40

	s.whenInput = textinput.New()
	s.whenInput.Prompt = "when (2006-01-02 15:04)> "
	s.whenInput.CharLimit = 32
	s.whenInput.Width = 40

	s.descArea = textarea.New()
	s.descArea.SetWidth(54)
	s.descArea.SetHeight(4)
	s.descArea.ShowLineNumbers = false
	s.descArea.Placeholder = "What is this call about?"
	return s
}

func (m *Model) setStatus(text string, isError bool) {
	m.Status = StatusBar{Text: text, IsError: isError}
}

func (m *Model) goTo(screen Screen) {
	m.screen = screen
}

func (m Model) Screen() Screen { return m.screen }

// slideProgress renders a slide offset as a progress track.
func slideProgress(s call.Slide) string {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = 24
	p.ShowPercentage = false
	frac := 0.0
	if s.MaxOffset() > 0 {
		frac = float64(s.Offset()) / float64(s.MaxOffset())
	}
	return p.ViewAs(frac)
}
