// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// EditorKeyMap holds the formula editor bindings.
type EditorKeyMap struct {
	// Caret
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	NextCell key.Binding
	PrevCell key.Binding

	// Editing
	Backspace key.Binding
	Delete    key.Binding
	Undo      key.Binding
	Redo      key.Binding
	Save      key.Binding

	// Rules
	NextRule key.Binding
	PrevRule key.Binding

	// General
	Command key.Binding
	Help    key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// Editor is the keymap the playground uses.
var Editor = DefaultEditorKeyMap()

// DefaultEditorKeyMap returns the default formula editor bindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return EditorKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "caret left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "caret right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "0"),
			key.WithHelp("home", "formula start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "$"),
			key.WithHelp("end", "formula end"),
		),
		NextCell: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next cell"),
		),
		PrevCell: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous cell"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "remove before caret"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "x"),
			key.WithHelp("del/x", "remove after caret"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z", "u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y", "ctrl+r"),
			key.WithHelp("ctrl+r", "redo"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save rules"),
		),
		NextRule: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next rule"),
		),
		PrevRule: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous rule"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave command line"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Command, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Home, k.End, k.NextCell, k.PrevCell},
		{k.Backspace, k.Delete, k.Undo, k.Redo, k.Save},
		{k.NextRule, k.PrevRule, k.Command, k.Help, k.Escape, k.Quit},
	}
}

// CommandKeyMap holds the command line bindings.
type CommandKeyMap struct {
	Submit  key.Binding
	Cancel  key.Binding
	History key.Binding
}

// Command is the keymap of the command line.
var Command = CommandKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run command"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	History: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
}
