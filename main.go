package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/analytics"
	"github.com/soulpulse/soulpulse/internal/config"
	"github.com/soulpulse/soulpulse/internal/layout"
	"github.com/soulpulse/soulpulse/internal/playback"
	"github.com/soulpulse/soulpulse/internal/provider"
	"github.com/soulpulse/soulpulse/internal/provider/spotify"
	"github.com/soulpulse/soulpulse/internal/provider/youtube"
	"github.com/soulpulse/soulpulse/internal/queue"
	"github.com/soulpulse/soulpulse/internal/state"
	"github.com/soulpulse/soulpulse/internal/ui/playerbar"
)

const seekStep = 5 * time.Second

type stateMsg playback.StateChange

type positionMsg playback.PositionChange

type viewModeMsg playback.ViewModeChange

type errorMsg playback.ErrorEvent

type subClosedMsg struct{}

type model struct {
	svc      playback.Service
	sub      *playback.Subscription
	stateMgr state.Interface
	queue    *queue.Queue
	sink     *analytics.Collector // nil when analytics is off

	st     playback.State
	width  int
	height int
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return model{}, err
	}

	stateMgr, err := state.Open()
	if err != nil {
		return model{}, err
	}

	registry := provider.NewRegistry()
	if cfg.HasSpotifyConfig() {
		sp := cfg.Spotify
		registry.Register(provider.Spotify, func() provider.Adapter {
			client := spotify.NewClient(sp.AccessToken, sp.DeviceID, sp.BaseURL, logger)
			return spotify.NewAdapter(client, logger)
		})
	}
	yt := cfg.YouTube
	registry.Register(provider.YouTube, func() provider.Adapter {
		return youtube.NewAdapter(youtube.NewClient(yt.BaseURL, nil), logger)
	})

	var sink analytics.Sink
	var collector *analytics.Collector
	if cfg.AnalyticsEnabled() {
		ac := cfg.GetAnalyticsConfig()
		collector = analytics.NewCollector(ac.URL, ac.EventsPerSecond, logger)
		sink = collector
	}

	q := queue.New()
	if saved, err := stateMgr.GetQueue(); err == nil && len(saved.Tracks) > 0 {
		q.Replace(saved.Tracks...)
		q.JumpTo(saved.CurrentIndex)
	}

	svc := playback.New(registry, q, sink, logger)

	// Restore persisted preferences
	if prefs, err := stateMgr.GetPlayer(); err == nil {
		svc.SetVolume(prefs.Volume)
		if prefs.Muted {
			svc.ToggleMute()
		}
		switch playback.ViewMode(prefs.ViewMode) {
		case playback.ViewMinimized:
			svc.CollapseToMini(playback.MiniPosition{X: prefs.MiniX, Y: prefs.MiniY})
		case playback.ViewCinema:
			svc.EnterCinema()
		}
	}

	return model{
		svc:      svc,
		sub:      svc.Subscribe(),
		stateMgr: stateMgr,
		queue:    q,
		sink:     collector,
		st:       svc.State(),
	}, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(cfg.LogLevel()); err == nil {
		logger.SetLevel(lvl)
	}
	return logger, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.sub),
		waitForPosition(m.sub),
		waitForViewMode(m.sub),
		waitForError(m.sub),
	)
}

func waitForState(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return stateMsg(e)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func waitForPosition(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.PositionChanged:
			return positionMsg(e)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func waitForViewMode(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.ViewModeChanged:
			return viewModeMsg(e)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func waitForError(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.Error:
			return errorMsg(e)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case stateMsg:
		m.st = msg.Current
		m.savePrefs()
		return m, waitForState(m.sub)

	case positionMsg:
		m.st.Position = msg.Position
		return m, waitForPosition(m.sub)

	case viewModeMsg:
		m.st = m.svc.State()
		m.savePrefs()
		return m, waitForViewMode(m.sub)

	case errorMsg:
		m.st = m.svc.State()
		return m, waitForError(m.sub)

	case subClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		return m, tea.Quit

	case "enter":
		if tr := m.queue.Current(); tr != nil {
			m.svc.Open(playback.OpenRequest{ //nolint:errcheck
				TrackID:         tr.ID,
				Provider:        tr.Provider,
				ProviderTrackID: tr.ProviderTrackID,
				Title:           tr.Title,
				Artist:          tr.Artist,
				Autoplay:        true,
			})
		}

	case " ":
		m.svc.TogglePlayPause()

	case "n":
		m.svc.Next()

	case "p":
		m.svc.Previous()

	case "s":
		m.svc.Stop()

	case "x":
		m.svc.ClosePlayer()

	case "w":
		m.switchProvider()

	case "+", "=":
		m.svc.SetVolume(m.st.Volume + 0.05)

	case "-":
		m.svc.SetVolume(m.st.Volume - 0.05)

	case "m":
		m.svc.ToggleMute()

	case "left":
		m.svc.SeekTo(m.st.Position - seekStep)

	case "right":
		m.svc.SeekTo(m.st.Position + seekStep)

	case "tab":
		if m.st.ViewMode == playback.ViewMinimized {
			m.svc.RestoreFromMini()
		} else {
			m.svc.CollapseToMini(m.st.MiniPos)
		}

	case "f":
		if m.st.ViewMode == playback.ViewCinema {
			m.svc.ExitCinema()
		} else {
			m.svc.EnterCinema()
		}
	}

	return m, nil
}

// switchProvider retargets the current track to the other backend when
// the queue knows its id there.
func (m model) switchProvider() {
	tr := m.queue.Current()
	if tr == nil || !m.st.Open {
		return
	}
	target := provider.Spotify
	if m.st.Provider == provider.Spotify {
		target = provider.YouTube
	}
	id := tr.IDForProvider(target)
	if id == "" {
		return
	}
	m.svc.SwitchProvider(target, id, tr.ID) //nolint:errcheck
}

func (m model) savePrefs() {
	m.stateMgr.SavePlayer(state.PlayerState{
		Volume:          m.st.Volume,
		Muted:           m.st.Muted,
		ViewMode:        int(m.st.ViewMode),
		MiniX:           m.st.MiniPos.X,
		MiniY:           m.st.MiniPos.Y,
		LastKnownTitle:  m.st.LastKnownTitle,
		LastKnownArtist: m.st.LastKnownArtist,
	})
}

func (m model) shutdown() {
	m.stateMgr.SaveQueue(state.QueueState{ //nolint:errcheck
		CurrentIndex: m.queue.CurrentIndex(),
		Tracks:       m.queue.Tracks(),
	})
	m.savePrefs()
	m.svc.Close() //nolint:errcheck
	if m.sink != nil {
		m.sink.Close()
	}
	m.stateMgr.Close() //nolint:errcheck
}

func (m model) View() string {
	reservation := layout.Reserve(m.st.ViewMode, m.st.Open, m.height)
	surface := playerbar.Render(m.st, m.width, reservation.Height)

	contentHeight := layout.ContentHeight(m.height, reservation)
	content := m.queueView(contentHeight)

	if surface == "" {
		return content
	}
	if m.st.ViewMode == playback.ViewCinema {
		return surface
	}
	return content + "\n" + surface
}

func (m model) queueView(height int) string {
	if height <= 0 {
		return ""
	}
	tracks := m.queue.Tracks()
	lines := make([]string, 0, min(len(tracks), height))
	for i, tr := range tracks {
		if len(lines) >= height {
			break
		}
		cursor := "  "
		if i == m.queue.CurrentIndex() {
			cursor = "> "
		}
		label := tr.Title
		if label == "" {
			label = tr.ProviderTrackID
		}
		if tr.Artist != "" {
			label = fmt.Sprintf("%s - %s", tr.Artist, label)
		}
		lines = append(lines, cursor+label)
	}
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
