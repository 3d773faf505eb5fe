// Package command implements undoable edits and the history that merges
// consecutive edits of the same target.
package command

import "github.com/inamate/vectorscene/internal/logging"

// DefaultMaxHistory is the undo depth used when none is configured.
const DefaultMaxHistory = 100

// Command is a reversible edit.
type Command interface {
	Name() string
	Execute()
	Undo()
	// CanMergeWith reports whether next, which has already been executed,
	// can be folded into this command.
	CanMergeWith(next Command) bool
	MergeWith(next Command)
}

// Manager keeps the undo and redo stacks.
type Manager struct {
	undo       []Command
	redo       []Command
	maxHistory int
	merging    bool
	onChange   func()
}

// NewManager creates a manager. Values below 1 use DefaultMaxHistory.
func NewManager(maxHistory int) *Manager {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{maxHistory: maxHistory, merging: true}
}

// OnHistoryChanged registers fn to run after every stack change.
func (m *Manager) OnHistoryChanged(fn func()) { m.onChange = fn }

func (m *Manager) CanUndo() bool  { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool  { return len(m.redo) > 0 }
func (m *Manager) UndoCount() int { return len(m.undo) }
func (m *Manager) RedoCount() int { return len(m.redo) }

// BeginMergeBlock allows consecutive mergeable commands to collapse.
func (m *Manager) BeginMergeBlock() { m.merging = true }

// EndMergeBlock stops merging until the next BeginMergeBlock.
func (m *Manager) EndMergeBlock() { m.merging = false }

// Execute runs cmd and records it. When merging is on and the top of the
// undo stack accepts cmd, cmd is folded into it instead of pushed.
func (m *Manager) Execute(cmd Command) {
	if cmd == nil {
		return
	}
	cmd.Execute()
	if m.merging && len(m.undo) > 0 {
		if top := m.undo[len(m.undo)-1]; top.CanMergeWith(cmd) {
			top.MergeWith(cmd)
			logging.Logger().Debug("merged command", "into", top.Name(), "command", cmd.Name())
			m.changed()
			return
		}
	}
	m.push(cmd)
}

// Record pushes a command whose effect has already been applied.
func (m *Manager) Record(cmd Command) {
	if cmd == nil {
		return
	}
	m.push(cmd)
}

func (m *Manager) push(cmd Command) {
	m.undo = append(m.undo, cmd)
	m.redo = nil
	if over := len(m.undo) - m.maxHistory; over > 0 {
		m.undo = append(m.undo[:0:0], m.undo[over:]...)
	}
	m.changed()
}

// Undo reverts the most recent command.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	cmd.Undo()
	m.redo = append(m.redo, cmd)
	m.changed()
	return true
}

// Redo reapplies the most recently undone command.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	cmd.Execute()
	m.undo = append(m.undo, cmd)
	m.changed()
	return true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.undo, m.redo = nil, nil
	m.changed()
}

// UndoHistory returns command names, most recent first.
func (m *Manager) UndoHistory() []string { return names(m.undo) }

// RedoHistory returns command names, most recent first.
func (m *Manager) RedoHistory() []string { return names(m.redo) }

func names(stack []Command) []string {
	out := make([]string, len(stack))
	for i, c := range stack {
		out[len(stack)-1-i] = c.Name()
	}
	return out
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
