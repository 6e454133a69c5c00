package history

import (
	"go.uber.org/zap"

	"canvas-backend/domain/core/aggregates"
)

// Log is the linear undo/redo sequence for one workspace. The cursor
// points at the most recently applied entry; -1 means nothing to undo.
//
// Recording while the cursor is not at the tail discards everything
// after it: there is no tree of alternate futures. The log is capped;
// once exceeded, the oldest entry is dropped and the cursor clamped.
type Log struct {
	entries []Action
	cursor  int
	limit   int
	logger  *zap.Logger
}

// NewLog creates an empty history log with the given entry cap
func NewLog(limit int, logger *zap.Logger) *Log {
	if limit <= 0 {
		limit = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{cursor: -1, limit: limit, logger: logger}
}

// Record appends an action that has already been applied to the
// workspace. It does not run the action.
func (l *Log) Record(action Action) {
	if action == nil {
		return
	}
	l.entries = append(l.entries[:l.cursor+1], action)
	l.cursor = len(l.entries) - 1

	if overflow := len(l.entries) - l.limit; overflow > 0 {
		l.entries = append([]Action(nil), l.entries[overflow:]...)
		l.cursor -= overflow
		if l.cursor < -1 {
			l.cursor = -1
		}
	}

	l.logger.Debug("recorded history action",
		zap.String("kind", string(action.Kind())),
		zap.Int("cursor", l.cursor),
		zap.Int("length", len(l.entries)),
	)
}

// Undo applies the inverse of the entry at the cursor and moves the
// cursor back. At the boundary it is a safe no-op.
func (l *Log) Undo(ws *aggregates.Workspace) bool {
	if l.cursor < 0 {
		return false
	}
	action := l.entries[l.cursor]
	action.Revert(ws)
	l.cursor--
	l.logger.Debug("undid history action", zap.String("kind", string(action.Kind())), zap.Int("cursor", l.cursor))
	return true
}

// Redo applies the forward form of the entry past the cursor and
// advances it. At the tail it is a safe no-op.
func (l *Log) Redo(ws *aggregates.Workspace) bool {
	if l.cursor >= len(l.entries)-1 {
		return false
	}
	action := l.entries[l.cursor+1]
	action.Apply(ws)
	l.cursor++
	l.logger.Debug("redid history action", zap.String("kind", string(action.Kind())), zap.Int("cursor", l.cursor))
	return true
}

// CanUndo reports whether an undo would do anything
func (l *Log) CanUndo() bool { return l.cursor >= 0 }

// CanRedo reports whether a redo would do anything
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries)-1 }

// Cursor returns the current history index
func (l *Log) Cursor() int { return l.cursor }

// Len returns the number of recorded entries
func (l *Log) Len() int { return len(l.entries) }

// SetLimit changes the entry cap. Shrinking below the current length
// drops the oldest entries and clamps the cursor.
func (l *Log) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	l.limit = limit
	if overflow := len(l.entries) - l.limit; overflow > 0 {
		l.entries = append([]Action(nil), l.entries[overflow:]...)
		l.cursor -= overflow
		if l.cursor < -1 {
			l.cursor = -1
		}
	}
}

// Clear drops all entries, used when a snapshot replaces the workspace
func (l *Log) Clear() {
	l.entries = nil
	l.cursor = -1
}
