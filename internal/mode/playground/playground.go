// Package playground is the interactive formula editor. It renders the
// selected rule with a caret, moves the caret with the keyboard or mouse and
// runs session commands typed after ":".
package playground

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/phonrule/internal/flags"
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/inventory"
	"github.com/zjrosen/phonrule/internal/keys"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/pubsub"
	"github.com/zjrosen/phonrule/internal/session"
	"github.com/zjrosen/phonrule/internal/txn"
	"github.com/zjrosen/phonrule/internal/ui/formulaview"
	"github.com/zjrosen/phonrule/internal/ui/styles"
	"github.com/zjrosen/phonrule/internal/watcher"
)

// historyShown is how many units the history line lists.
const historyShown = 5

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// Config wires a Model.
type Config struct {
	Session *session.Session
	// Index and InventoryPath enable reloading; Inventory delivers the
	// watcher's change notifications.
	Index         *inventory.Index
	InventoryPath string
	Inventory     <-chan watcher.Change
	Flags         *flags.Registry
	// Width wraps the formula; 0 wraps at the panel width.
	Width int
}

// Model holds the playground state.
type Model struct {
	s         *session.Session
	index     *inventory.Index
	invPath   string
	inventory <-chan watcher.Change
	flags     *flags.Registry
	wrap      int

	ctx      context.Context
	cancel   context.CancelFunc
	listener *pubsub.ContinuousListener[txn.Change]

	input      textinput.Model
	help       help.Model
	commanding bool
	commands   []string
	recall     int

	status   string
	kind     statusKind
	lastDiff string

	width    int
	height   int
	quitting bool
}

// inventoryChangedMsg carries a watcher notification.
type inventoryChangedMsg struct {
	change watcher.Change
}

// New creates a playground over cfg.Session.
func New(cfg Config) Model {
	ctx, cancel := context.WithCancel(context.Background())
	in := textinput.New()
	in.Prompt = ":"
	in.Placeholder = "help"
	in.CharLimit = 256

	m := Model{
		s:         cfg.Session,
		index:     cfg.Index,
		invPath:   cfg.InventoryPath,
		inventory: cfg.Inventory,
		flags:     cfg.Flags,
		wrap:      cfg.Width,
		ctx:       ctx,
		cancel:    cancel,
		listener: pubsub.NewContinuousListener(ctx, cfg.Session.Changes(),
			pubsub.CommittedEvent, pubsub.UndoneEvent, pubsub.RedoneEvent),
		input:  in,
		help:   help.New(),
		width:  80,
		height: 24,
	}
	if cfg.Session.Rule() == nil {
		m.setStatus(statusInfo, "no rules yet: type :new regular <name>")
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, m.listener.Listen()}
	if m.inventory != nil {
		cmds = append(cmds, waitForInventory(m.inventory))
	}
	return tea.Batch(cmds...)
}

func waitForInventory(ch <-chan watcher.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return inventoryChangedMsg{change: c}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil

	case pubsub.Event[txn.Change]:
		m.handleChange(msg)
		return m, m.listener.Listen()

	case inventoryChangedMsg:
		m.handleInventory(msg.change)
		return m, waitForInventory(m.inventory)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.KeyMsg:
		if m.commanding {
			return m.handleCommandKeys(msg)
		}
		return m.handleEditorKeys(msg)
	}
	return m, nil
}

// handleChange runs after every committed, undone or redone unit. Autosave
// happens here so saving never races an edit.
func (m *Model) handleChange(ev pubsub.Event[txn.Change]) {
	m.lastDiff = ev.Payload.Diff
	if !m.flags.Enabled(flags.FlagAutosave) {
		return
	}
	if err := m.s.Save(); err != nil {
		log.ErrorErr(log.CatStore, "autosave failed", err, "unit", ev.Payload.Unit.Name)
		m.setStatus(statusError, "autosave failed: "+err.Error())
		return
	}
	log.Debug(log.CatStore, "autosaved", "unit", ev.Payload.Unit.Name, "event", ev.Type)
}

func (m *Model) handleInventory(c watcher.Change) {
	if m.index == nil || m.invPath == "" {
		return
	}
	st, err := m.index.Reload(m.ctx, m.invPath)
	if err != nil {
		m.setStatus(statusError, "inventory reload failed: "+err.Error())
		return
	}
	m.setStatus(statusSuccess, fmt.Sprintf("inventory reloaded (%d added, %d updated)", st.Added, st.Updated))
	log.Debug(log.CatWatcher, "inventory change handled", "paths", c.Paths)
}

// handleMouseMsg moves the caret to a clicked cell or selects a clicked rule.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	if ed := m.s.Editor(); ed != nil {
		for _, cell := range ed.Cells() {
			if z := zone.Get(makeCellZoneID(cell)); z != nil && z.InBounds(msg) {
				m.s.MoveToCell(cell)
				return m, nil
			}
		}
	}
	for _, r := range m.s.Data().Rules {
		if z := zone.Get(makeRuleZoneID(r.Name())); z != nil && z.InBounds(msg) {
			m.selectRule(r.Name())
			return m, nil
		}
	}
	return m, nil
}

func (m Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keys.Editor
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, k.Command):
		m.commanding = true
		m.recall = len(m.commands)
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.s.Editor() == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, k.Left):
		m.s.Move(-1)
	case key.Matches(msg, k.Right):
		m.s.Move(1)
	case key.Matches(msg, k.Home):
		m.s.Home()
	case key.Matches(msg, k.End):
		m.s.End()
	case key.Matches(msg, k.NextCell):
		m.stepCell(1)
	case key.Matches(msg, k.PrevCell):
		m.stepCell(-1)
	case key.Matches(msg, k.NextRule):
		m.stepRule(1)
	case key.Matches(msg, k.PrevRule):
		m.stepRule(-1)
	case key.Matches(msg, k.Backspace):
		m.exec("bs")
	case key.Matches(msg, k.Delete):
		m.exec("del")
	case key.Matches(msg, k.Undo):
		m.exec("undo")
	case key.Matches(msg, k.Redo):
		m.exec("redo")
	case key.Matches(msg, k.Save):
		m.exec("save")
	}
	return m, nil
}

func (m Model) handleCommandKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Command.Cancel):
		m.commanding = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, keys.Command.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.commanding = false
		m.input.Blur()
		m.input.SetValue("")
		if line == "" {
			return m, nil
		}
		m.commands = append(m.commands, line)
		if line == "q" || line == "quit" {
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}
		m.exec(line)
		return m, nil
	case key.Matches(msg, keys.Command.History):
		if m.recall > 0 {
			m.recall--
			m.input.SetValue(m.commands[m.recall])
			m.input.CursorEnd()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exec runs a session command and reports its outcome in the status line.
func (m *Model) exec(line string) {
	out, err := m.s.Exec(m.ctx, line)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	if ws := out.Diagnostics.Warnings(); len(ws) > 0 && m.flags.Enabled(flags.FlagEnvDiagnostics) {
		parts := make([]string, len(ws))
		for i, d := range ws {
			parts[i] = d.String()
		}
		m.setStatus(statusWarning, out.Message+": "+strings.Join(parts, "; "))
		return
	}
	m.setStatus(statusSuccess, out.Message)
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.kind = kind
	m.status = text
}

func (m *Model) selectRule(name string) {
	if err := m.s.Select(name); err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	m.setStatus(statusInfo, "editing "+name)
}

func (m *Model) stepRule(delta int) {
	rules := m.s.Data().Rules
	if len(rules) < 2 {
		return
	}
	cur := 0
	for i, r := range rules {
		if r == m.s.Rule() {
			cur = i
		}
	}
	next := (cur + delta + len(rules)) % len(rules)
	m.selectRule(rules[next].Name())
}

func (m *Model) stepCell(delta int) {
	cells := m.s.Editor().Cells()
	cur := 0
	for i, c := range cells {
		if c == m.s.Cursor().Cell {
			cur = i
		}
	}
	m.s.MoveToCell(cells[(cur+delta+len(cells))%len(cells)])
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	sections := []string{m.renderRules(), m.renderFormula(), m.renderHistory(), m.renderStatus()}
	if m.commanding {
		sections = append(sections, m.input.View())
	} else {
		sections = append(sections, m.help.View(keys.Editor))
	}
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderRules() string {
	rules := m.s.Data().Rules
	if len(rules) == 0 {
		return styles.LegendStyle.Render("no rules")
	}
	tabs := make([]string, len(rules))
	for i, r := range rules {
		style := styles.LegendStyle
		if r == m.s.Rule() {
			style = styles.SelectedStyle
		}
		tabs[i] = zone.Mark(makeRuleZoneID(r.Name()), style.Render(" "+r.Name()+" "))
	}
	return styles.Truncate(strings.Join(tabs, " "), m.width)
}

func (m Model) renderFormula() string {
	r := m.s.Rule()
	if r == nil {
		return styles.Panel{Title: "Formula", Width: m.width, Height: 4}.Render()
	}
	inner := max(m.width-4, 10)
	wrap := inner
	if m.wrap > 0 {
		wrap = min(m.wrap, inner)
	}
	body := m.s.Render(formulaview.Options{
		Width: wrap,
		Mark: func(cell formula.CellID, s string) string {
			return zone.Mark(makeCellZoneID(cell), s)
		},
	})
	content := " " + body + "\n " + styles.LegendStyle.Render(formulaview.Legend(m.s.Editor()))

	title := fmt.Sprintf("%s · %s", r.Name(), r.Kind())
	if n := len(session.Describe(m.s.Data(), r)); n > 1 {
		title += fmt.Sprintf(" · rhs %d/%d", m.s.RHS()+1, n)
	}
	height := lipgloss.Height(content) + 2
	return styles.Panel{Title: title, Content: content, Width: m.width, Height: height, Focused: !m.commanding}.Render()
}

func (m Model) renderHistory() string {
	hist := m.s.History()
	if len(hist) == 0 {
		return styles.LegendStyle.Render("history: empty")
	}
	if len(hist) > historyShown {
		hist = hist[len(hist)-historyShown:]
	}
	line := "history: " + strings.Join(hist, " › ")
	if m.lastDiff != "" {
		line += "  " + firstLine(m.lastDiff)
	}
	return styles.LegendStyle.Render(styles.Truncate(line, m.width))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	style := styles.StatusBarStyle
	switch m.kind {
	case statusSuccess:
		style = styles.SuccessTextStyle
	case statusWarning:
		style = styles.WarningTextStyle
	case statusError:
		style = styles.ErrorTextStyle
	}
	lines := strings.Split(m.status, "\n")
	for i, l := range lines {
		lines[i] = style.Render(styles.Truncate(l, m.width))
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
