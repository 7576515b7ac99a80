package ui

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/galley/internal/bgcolor"
	"github.com/five82/galley/internal/colorsample"
	"github.com/five82/galley/internal/imageloader"
	"github.com/five82/galley/internal/prefs"
	"github.com/five82/galley/internal/reachability"
	"github.com/five82/galley/internal/respcache"
	"github.com/five82/galley/internal/session"
	"github.com/five82/galley/internal/state"
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Store        *state.RecipesStore
	Session      session.Session
	Cache        *respcache.Cache
	Reachability *reachability.Monitor
	Logger       *slog.Logger
	ThemeName    string
	Algorithm    colorsample.Algorithm
	PrefsPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.RecipesStore
	logger    *slog.Logger
	prefsPath string
	keys      keyMap

	// Screen-scoped services
	sched       *uiScheduler
	loader      *imageloader.Loader
	retry       *imageloader.ReconnectRetry
	colors      *bgcolor.Manager
	preview     *previewCache
	unsubscribe []func()

	// UI state
	theme          Theme
	algorithm      colorsample.Algorithm
	width          int
	height         int
	ready          bool
	showHelp       bool
	spinner        spinner.Model
	detailViewport viewport.Model

	// Data state
	view     state.ViewState
	selected int
	offset   int
	photoURL string
	online   bool
}

// New creates a new Bubble Tea model along with the image loader and
// background colour manager that live as long as the screen.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sched := newScheduler()

	var source imageloader.ReachabilitySource
	if opts.Reachability != nil {
		source = opts.Reachability
	}
	retry := imageloader.NewReconnectRetry(source)
	loader := imageloader.New(imageloader.Options{
		Session:   opts.Session,
		Cache:     opts.Cache,
		Scheduler: sched,
		Logger:    logger,
	}, retry)
	colors := bgcolor.New(bgcolor.Options{
		Session:   opts.Session,
		Scheduler: sched,
		Algorithm: opts.Algorithm,
		Logger:    logger,
	})

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		logger:    logger,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		sched:     sched,
		loader:    loader,
		retry:     retry,
		colors:    colors,
		preview:   &previewCache{},
		theme:     GetTheme(opts.ThemeName),
		algorithm: opts.Algorithm,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		online:    true,
	}
	if opts.Store != nil {
		m.view = opts.Store.State()
		m.unsubscribe = append(m.unsubscribe, opts.Store.Subscribe(func(v state.ViewState) {
			sched.push(viewStateMsg(v))
		}))
	}
	if opts.Reachability != nil {
		m.online = opts.Reachability.IsConnected()
		m.unsubscribe = append(m.unsubscribe, opts.Reachability.Subscribe(func(e reachability.Event) {
			sched.push(reachabilityMsg(e))
		}))
	}
	return m
}

// Close tears down the screen: pending image fetches are cancelled and no
// further updates are delivered.
func (m Model) Close() {
	for _, unsubscribe := range m.unsubscribe {
		unsubscribe()
	}
	m.loader.Cancel()
	m.retry.Close()
	m.colors.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.dispatch(state.LoadRecipes{}))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.ensureVisible()
		m.feedColors()
		m.refreshDetail()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case drainMsg:
		for _, queued := range m.sched.drain() {
			m.handleQueued(queued)
		}
		m.refreshDetail()
		return m, nil

	case viewStateMsg, reachabilityMsg:
		m.handleQueued(msg)
		m.refreshDetail()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleQueued(msg tea.Msg) {
	switch msg := msg.(type) {
	case postedFunc:
		msg()
	case viewStateMsg:
		m.applyViewState(state.ViewState(msg))
	case reachabilityMsg:
		m.online = msg.Connected
	}
}

func (m *Model) applyViewState(v state.ViewState) {
	m.view = v
	m.selected = clamp(m.selected, 0, len(v.Recipes)-1)
	m.ensureVisible()
	m.syncSelection()
}

// syncSelection points the detail loader at the selected photo. Changing URL
// cancels the old fetch and resets the phase before loading the new one.
func (m *Model) syncSelection() {
	photo := ""
	if r, ok := m.selectedRecipe(); ok {
		photo = strings.TrimSpace(r.PhotoURLLarge)
	}
	if photo != m.photoURL {
		m.loader.Cancel()
		m.loader.Reset()
		m.photoURL = photo
		if u, err := url.Parse(photo); err == nil && photo != "" {
			m.loader.Load(u, 1)
		}
	}
	m.feedColors()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	theme := m.tintedTheme()
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)
	height := m.listHeight()

	center := func(content string) string {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content,
			lipgloss.WithWhitespaceBackground(lipgloss.Color(theme.Surface)))
	}

	switch {
	case m.view.Kind == state.Loading:
		return center(bg.Render(m.spinner.View()+" Loading recipes...", styles.AccentText))
	case m.view.Kind == state.FailedToLoad:
		return center(lipgloss.JoinVertical(lipgloss.Center,
			bg.Render(describeRecipesError(m.view.Err), styles.DangerText),
			bg.Render("Press r to retry", styles.MutedText),
		))
	case m.view.IsEmpty():
		return center(lipgloss.JoinVertical(lipgloss.Center,
			bg.Render("No recipes", styles.Text.Bold(true)),
			bg.Render("Nothing to cook yet. Press R to check again.", styles.MutedText),
		))
	}

	list := m.renderList(theme, m.listWidth(), height)
	if m.detailWidth() == 0 {
		return list
	}
	detailBg := NewBgStyle(theme.SurfaceAlt)
	detail := detailBg.FillBlock(detailBg.Spaces(1)+m.detailViewport.View(), m.detailWidth(), height)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) tintedTheme() Theme {
	if c, ok := m.colors.Color(); ok {
		return m.theme.Tinted(c)
	}
	return m.theme
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.loader.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, m.keys.CycleColor):
		m.algorithm = m.algorithm.Next()
		m.colors.SetAlgorithm(m.algorithm)
		m.savePrefs()
		m.feedColors()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.dispatch(state.Refresh{PullToRefresh: false})

	case key.Matches(msg, m.keys.PullRefresh):
		return m, m.dispatch(state.Refresh{PullToRefresh: true})
	}

	if m.view.Kind != state.Loaded || len(m.view.Recipes) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Top):
		m.setSelection(0)
	case key.Matches(msg, m.keys.Bottom):
		m.setSelection(len(m.view.Recipes) - 1)
	case key.Matches(msg, m.keys.PageDown):
		m.moveSelection(m.listHeight())
	case key.Matches(msg, m.keys.PageUp):
		m.moveSelection(-m.listHeight())
	case key.Matches(msg, m.keys.DetailDown):
		m.detailViewport.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.DetailUp):
		m.detailViewport.HalfPageUp()
		return m, nil
	default:
		return m, nil
	}
	m.refreshDetail()
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	err := prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:          m.theme.Name,
		ColorAlgorithm: m.algorithm.String(),
	})
	if err != nil {
		m.logger.Warn("save preferences failed", "error", err)
	}
}

// dispatch runs a store action off the update loop. Resulting states arrive
// through the store subscription.
func (m Model) dispatch(action state.Action) tea.Cmd {
	store, ctx := m.store, m.ctx
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		store.Send(ctx, action)
		return nil
	}
}

// Messages

type viewStateMsg state.ViewState

type reachabilityMsg reachability.Event

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	m.sched.attach(p.Send)
	_, err := p.Run()
	return err
}
