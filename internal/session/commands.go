package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/envstring"
	"github.com/zjrosen/phonrule/internal/formula"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/ui/formulaview"
)

// ErrUnknownCommand is returned for a verb no command answers to.
var ErrUnknownCommand = errors.New("unknown command")

// Outcome reports what a command did.
type Outcome struct {
	Message string
	// Diagnostics holds environment parser findings for env.
	Diagnostics envstring.Diagnostics
}

type command struct {
	usage string
	help  string
	// needsRule commands fail with ErrNoRule when nothing is selected.
	needsRule bool
	run       func(ctx context.Context, s *Session, args []string) (Outcome, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":    {usage: "new <kind> <name>", help: "add a rule and select it", run: cmdNew},
		"rule":   {usage: "rule <name>", help: "select a rule", run: cmdRule},
		"rules":  {usage: "rules", help: "list rules", run: cmdRules},
		"rhs":    {usage: "rhs <n>", help: "edit right-hand side n", needsRule: true, run: cmdRHS},
		"addrhs": {usage: "addrhs", help: "add a right-hand side", needsRule: true, run: cmdAddRHS},
		"cell":   {usage: "cell <name>", help: "move to the end of a cell", needsRule: true, run: cmdCell},
		"left":   {usage: "left [n]", help: "move the caret left", needsRule: true, run: cmdMove(-1)},
		"right":  {usage: "right [n]", help: "move the caret right", needsRule: true, run: cmdMove(1)},
		"home":   {usage: "home", help: "move to the start", needsRule: true, run: cmdHome},
		"end":    {usage: "end", help: "move to the end", needsRule: true, run: cmdEnd},
		"ins":    {usage: "ins <kind> [symbol|index]", help: "insert at the caret", needsRule: true, run: cmdInsert},
		"del":    {usage: "del", help: "remove the item after the caret", needsRule: true, run: cmdRemove(true)},
		"bs":     {usage: "bs", help: "remove the item before the caret", needsRule: true, run: cmdRemove(false)},
		"rm":     {usage: "rm <from> <to>", help: "remove items from..to of the caret's cell", needsRule: true, run: cmdRemoveRange},
		"col":    {usage: "col", help: "insert an input column", needsRule: true, run: cmdColumn},
		"rmcol":  {usage: "rmcol", help: "remove the caret's input column", needsRule: true, run: cmdRemoveColumn},
		"mod":    {usage: "mod <class|->", help: "set or clear a mapping's modification", needsRule: true, run: cmdModify},
		"occ":    {usage: "occ <min> <max|*>", help: "set how often a context may occur", needsRule: true, run: cmdOccurrence},
		"env":    {usage: "env <environment>", help: "replace the environment, e.g. env / [C] _ #", needsRule: true, run: cmdEnv},
		"middle": {usage: "middle left|right", help: "attach the middle zone to a switch", needsRule: true, run: cmdMiddle},
		"opts":   {usage: "opts", help: "list what can be inserted at the caret", needsRule: true, run: cmdOptions},
		"undo":   {usage: "undo", help: "undo the last edit", run: cmdUndo},
		"redo":   {usage: "redo", help: "redo the last undone edit", run: cmdRedo},
		"save":   {usage: "save", help: "store every rule", run: cmdSave},
		"help":   {usage: "help", help: "list commands", run: cmdHelp},
	}
}

// Exec runs one command line.
func (s *Session) Exec(ctx context.Context, line string) (Outcome, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Outcome{}, nil
	}
	verb, args := fields[0], fields[1:]
	cmd, ok := commands[verb]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownCommand, verb)
	}
	if cmd.needsRule && s.ed == nil {
		return Outcome{}, ErrNoRule
	}
	log.Debug(log.CatUI, "exec", "command", verb, "args", len(args))
	if verb == "env" {
		// The environment string keeps its own spacing.
		args = []string{strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), verb))}
	}
	return cmd.run(ctx, s, args)
}

// Usage lists every command with its help text, sorted by verb.
func Usage() []string {
	verbs := make([]string, 0, len(commands))
	for v := range commands {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	out := make([]string, len(verbs))
	for i, v := range verbs {
		out[i] = fmt.Sprintf("%-28s %s", commands[v].usage, commands[v].help)
	}
	return out
}

func usageError(verb string) error {
	return fmt.Errorf("usage: %s", commands[verb].usage)
}

// apply moves the caret to where an edit result asks.
func (s *Session) apply(res formula.Result, err error, done string) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	if !res.OK() {
		return Outcome{Message: "nothing to do here"}, nil
	}
	s.cursor = s.clamp(formulaview.CursorFor(res))
	return Outcome{Message: done}, nil
}

func cmdNew(_ context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) < 2 {
		return Outcome{}, usageError("new")
	}
	r, err := s.NewRule(domain.RuleKind(args[0]), strings.Join(args[1:], " "))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("new %s rule %q", r.Kind(), r.Name())}, nil
}

func cmdRule(_ context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, usageError("rule")
	}
	name := strings.Join(args, " ")
	if err := s.Select(name); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "editing " + name}, nil
}

func cmdRules(_ context.Context, s *Session, _ []string) (Outcome, error) {
	if len(s.data.Rules) == 0 {
		return Outcome{Message: "no rules"}, nil
	}
	names := make([]string, len(s.data.Rules))
	for i, r := range s.data.Rules {
		names[i] = r.Name()
	}
	return Outcome{Message: strings.Join(names, ", ")}, nil
}

func cmdRHS(_ context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) != 1 {
		return Outcome{}, usageError("rhs")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return Outcome{}, usageError("rhs")
	}
	if err := s.SelectRHS(n - 1); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("editing right-hand side %d", n)}, nil
}

func cmdAddRHS(ctx context.Context, s *Session, _ []string) (Outcome, error) {
	reg, ok := s.rule.(*domain.RegularRule)
	if !ok {
		return Outcome{}, formula.ErrNotApplicable
	}
	err := s.uow.Do(ctx, "add right-hand side", func(context.Context) error {
		reg.RightHandSides = append(reg.RightHandSides, domain.NewRightHandSide())
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	n := len(reg.RightHandSides)
	if err := s.SelectRHS(n - 1); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("editing right-hand side %d", n)}, nil
}

func cmdCell(_ context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) != 1 {
		return Outcome{}, usageError("cell")
	}
	cell, ok := s.cellByName(args[0])
	if !ok || !s.MoveToCell(cell) {
		return Outcome{}, fmt.Errorf("no cell %q", args[0])
	}
	return Outcome{}, nil
}

func cmdMove(dir int) func(context.Context, *Session, []string) (Outcome, error) {
	return func(_ context.Context, s *Session, args []string) (Outcome, error) {
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return Outcome{}, fmt.Errorf("bad count %q", args[0])
			}
			n = v
		}
		s.Move(dir * n)
		return Outcome{}, nil
	}
}

func cmdHome(_ context.Context, s *Session, _ []string) (Outcome, error) {
	s.Home()
	return Outcome{}, nil
}

func cmdEnd(_ context.Context, s *Session, _ []string) (Outcome, error) {
	s.End()
	return Outcome{}, nil
}

func cmdInsert(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, usageError("ins")
	}
	kind, ok := formula.ParseInsertKind(args[0])
	if !ok {
		return Outcome{}, fmt.Errorf("unknown insert kind %q", args[0])
	}
	ref, err := s.ref(kind, args[1:])
	if err != nil {
		return Outcome{}, err
	}
	if !s.ed.ShouldOffer(kind, s.selection()) {
		return Outcome{}, fmt.Errorf("cannot insert %s here", kind)
	}
	res, err := s.ed.Insert(ctx, kind, ref, s.selection())
	return s.apply(res, err, "inserted "+kind.String())
}

// ref resolves the argument of an insertion. No argument inserts a
// placeholder.
func (s *Session) ref(kind formula.InsertKind, args []string) (formula.Ref, error) {
	if len(args) == 0 {
		if kind == formula.InsertIndex {
			return formula.Ref{}, usageError("ins")
		}
		return formula.Ref{}, nil
	}
	arg := args[0]
	switch kind {
	case formula.InsertPhoneme:
		p, ok := s.lookup.PhonemeBySymbol(arg)
		if !ok {
			return formula.Ref{}, fmt.Errorf("unknown phoneme %q", arg)
		}
		return formula.PhonemeRef(p), nil
	case formula.InsertNaturalClass, formula.InsertFeatures:
		nc, ok := s.lookup.ClassByAbbreviation(arg)
		if !ok {
			return formula.Ref{}, fmt.Errorf("unknown natural class %q", arg)
		}
		return formula.ClassRef(nc), nil
	case formula.InsertIndex:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return formula.Ref{}, fmt.Errorf("bad index %q", arg)
		}
		return formula.IndexRef(n), nil
	}
	return formula.Ref{}, fmt.Errorf("%s takes no argument", kind)
}

func cmdRemove(forward bool) func(context.Context, *Session, []string) (Outcome, error) {
	return func(ctx context.Context, s *Session, _ []string) (Outcome, error) {
		res, err := s.ed.Remove(ctx, s.selection(), forward)
		return s.apply(res, err, "removed")
	}
}

func cmdRemoveRange(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if len(args) != 2 {
		return Outcome{}, usageError("rm")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	n := s.ed.ItemCount(s.cursor.Cell)
	if err1 != nil || err2 != nil || from < 1 || to < from || to > n {
		return Outcome{}, fmt.Errorf("items must be within 1..%d", n)
	}
	res, err := s.ed.Remove(ctx, s.span(from-1, to-1), false)
	return s.apply(res, err, fmt.Sprintf("removed %d items", to-from+1))
}

func cmdColumn(ctx context.Context, s *Session, _ []string) (Outcome, error) {
	if s.affix == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	res, err := s.affix.InsertColumn(ctx, s.selection())
	return s.apply(res, err, "inserted column")
}

func cmdRemoveColumn(ctx context.Context, s *Session, _ []string) (Outcome, error) {
	if s.affix == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	res, err := s.affix.RemoveColumn(ctx, s.selection())
	return s.apply(res, err, "removed column")
}

func cmdModify(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if s.affix == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	if len(args) != 1 {
		return Outcome{}, usageError("mod")
	}
	var nc *domain.NaturalClass
	if args[0] != "-" {
		var ok bool
		if nc, ok = s.lookup.ClassByAbbreviation(args[0]); !ok {
			return Outcome{}, fmt.Errorf("unknown natural class %q", args[0])
		}
	}
	res, err := s.affix.SetMappingModification(ctx, s.itemSelection(), nc)
	return s.apply(res, err, "modification set")
}

func cmdOccurrence(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if s.regular == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	if len(args) != 2 {
		return Outcome{}, usageError("occ")
	}
	lo, err := strconv.Atoi(args[0])
	if err != nil {
		return Outcome{}, usageError("occ")
	}
	hi := domain.Unbounded
	if args[1] != "*" {
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return Outcome{}, usageError("occ")
		}
	}
	res, err := s.regular.SetOccurrence(ctx, s.itemSelection(), lo, hi)
	return s.apply(res, err, "occurrence set")
}

// itemSelection selects the item the caret is on: the one before it, or the
// first item at a cell start.
func (s *Session) itemSelection() formula.Selection {
	i := s.cursor.Index
	if i < 0 {
		i = 0
	}
	return formula.Point(s.ed.AnchorAt(s.cursor.Cell, i, formula.PlaceFinal))
}

func cmdEnv(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if s.regular == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	if len(args) == 0 || args[0] == "" {
		env, err := s.regular.Environment()
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: env}, nil
	}
	diags, err := s.regular.SetEnvironment(ctx, args[0])
	if err != nil {
		return Outcome{}, err
	}
	s.cursor = s.clamp(s.cursor)
	msg := "environment set"
	if w := len(diags.Warnings()); w > 0 {
		msg = fmt.Sprintf("environment set, %d parts skipped", w)
	}
	return Outcome{Message: msg, Diagnostics: diags}, nil
}

func cmdMiddle(ctx context.Context, s *Session, args []string) (Outcome, error) {
	if s.meta == nil {
		return Outcome{}, formula.ErrNotApplicable
	}
	if len(args) != 1 || (args[0] != "left" && args[0] != "right") {
		return Outcome{}, usageError("middle")
	}
	if err := s.meta.SetMiddleWithLeftSwitch(ctx, args[0] == "left"); err != nil {
		return Outcome{}, err
	}
	s.cursor = s.clamp(s.cursor)
	return Outcome{Message: "middle joins the " + args[0] + " switch"}, nil
}

func cmdOptions(_ context.Context, s *Session, _ []string) (Outcome, error) {
	kinds := s.ed.Options(s.selection())
	if len(kinds) == 0 {
		return Outcome{Message: formula.NoOptionsMessage}, nil
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return Outcome{Message: strings.Join(names, ", ")}, nil
}

func cmdUndo(ctx context.Context, s *Session, _ []string) (Outcome, error) {
	u, err := s.Undo(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "undid " + u.Name}, nil
}

func cmdRedo(ctx context.Context, s *Session, _ []string) (Outcome, error) {
	u, err := s.Redo(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "redid " + u.Name}, nil
}

func cmdSave(_ context.Context, s *Session, _ []string) (Outcome, error) {
	if err := s.Save(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("saved %d rules", len(s.data.Rules))}, nil
}

func cmdHelp(context.Context, *Session, []string) (Outcome, error) {
	return Outcome{Message: strings.Join(Usage(), "\n")}, nil
}
