// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

// Package tui is the terminal reading surface. It pages through engine
// content in a viewport and reports every position change to the
// session controller; it never persists anything itself.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MorningAppLabs/LapBook/internal/engine"
	"github.com/MorningAppLabs/LapBook/internal/library"
	"github.com/MorningAppLabs/LapBook/internal/session"
	"github.com/MorningAppLabs/LapBook/internal/settings"
)

type model struct {
	ctrl  *session.Controller
	eng   engine.Engine
	hl    *library.Highlights
	entry library.Entry
	prefs settings.Settings

	vp            viewport.Model
	text          string
	lines         []string
	unit          int
	pendingOffset int
	status        string
	ready         bool // first WindowSizeMsg seen
	loaded        bool // current unit's text loaded
	width         int
	height        int
}

type unitLoadedMsg struct {
	unit int
	text string
	err  error
}

// Run displays the opened document and blocks until the user quits.
// The caller owns the controller and closes it afterwards.
func Run(ctrl *session.Controller, eng engine.Engine, hl *library.Highlights, entry library.Entry, prefs settings.Settings, start session.Position) error {
	m := model{
		ctrl:          ctrl,
		eng:           eng,
		hl:            hl,
		entry:         entry,
		prefs:         prefs,
		unit:          start.Unit,
		pendingOffset: start.Offset,
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return m.loadUnit(m.unit)
}

func (m model) loadUnit(unit int) tea.Cmd {
	eng := m.eng
	return func() tea.Msg {
		text, err := eng.Unit(unit)
		return unitLoadedMsg{unit: unit, text: text, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 2
		}
		// Re-wrap whatever is on screen at the new width. The resume
		// offset is only consumed once the unit's text is here, so it
		// survives any size/load arrival order.
		if m.loaded {
			if m.pendingOffset > 0 {
				m.reflow(m.takePending())
			} else {
				m.reflow(m.vp.YOffset)
			}
		}
		return m, nil

	case unitLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("cannot read section: %v", msg.err)
			return m, nil
		}
		m.unit = msg.unit
		m.text = msg.text
		m.loaded = true
		if m.ready {
			// Navigation lands at the top of the new unit; only a
			// pending resume offset moves it.
			m.reflow(m.takePending())
			m.report()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.report()
			return m, tea.Quit
		case "n", "right":
			if m.unit+1 < m.eng.Units() {
				return m, m.loadUnit(m.unit + 1)
			}
			return m, nil
		case "p", "left":
			if m.unit > 0 {
				return m, m.loadUnit(m.unit - 1)
			}
			return m, nil
		case "h":
			m.addHighlight()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	m.report()
	return m, cmd
}

// addHighlight records the line at the top of the viewport. Range
// highlights only exist for EPUB; the PDF engine has no range
// addressing, so PDF highlights carry text only.
func (m *model) addHighlight() {
	if m.vp.YOffset >= len(m.lines) {
		return
	}
	text := strings.TrimSpace(m.lines[m.vp.YOffset])
	if text == "" {
		m.status = "nothing to highlight here"
		return
	}
	var cfiRange string
	if m.entry.FileType == library.FileTypeEPUB {
		cfiRange = string(m.eng.LocatorFor(m.unit, m.vp.YOffset))
	}
	m.hl.Create(cfiRange, text, library.ColorYellow, "")
	m.status = "highlighted"
}

// report forwards the current position to the session controller, which
// normalizes and debounces it.
func (m *model) report() {
	if !m.ready {
		return
	}
	m.ctrl.ReportLocation(m.unit, m.vp.YOffset)
}

// takePending consumes the resume offset, returning 0 once it has been
// applied.
func (m *model) takePending() int {
	off := m.pendingOffset
	m.pendingOffset = 0
	return off
}

// reflow wraps the current unit's text at the effective width and moves
// the viewport to offset. Runs on every resize so the wrapping always
// matches the terminal.
func (m *model) reflow(offset int) {
	m.lines = wrapLines(m.text, m.contentWidth())
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.SetYOffset(offset)
}

func (m model) contentWidth() int {
	w := m.width
	if m.prefs.ReaderWidth > 0 && m.prefs.ReaderWidth < w {
		w = m.prefs.ReaderWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	app := m.prefs.Appearance()
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(app.Background)).
		Background(lipgloss.Color(app.Foreground)).
		Width(m.width).
		Padding(0, 1).
		Render(truncate(m.entry.Title, m.width-14) + fmt.Sprintf("  [%d/%d]", m.unit+1, m.eng.Units()))

	pct := int(m.eng.Fraction(m.unit) * 100)
	help := "n/p section  h highlight  q quit"
	if m.status != "" {
		help = m.status
	}
	footer := lipgloss.NewStyle().
		Faint(true).
		Width(m.width).
		Padding(0, 1).
		Render(fmt.Sprintf("%3d%%  %s", pct, help))

	return header + "\n" + m.vp.View() + "\n" + footer
}

// wrapLines splits text into display lines at the given width.
func wrapLines(text string, width int) []string {
	wrapped := lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(text))
	return strings.Split(wrapped, "\n")
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
