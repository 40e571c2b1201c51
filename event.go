package agent

import "github.com/shopspring/decimal"

// Stage identifies a pipeline state. A run moves Selecting → Invoking
// (skipped when no tool was chosen) → Formatting, and terminates in Done or
// Failed.
type Stage string

const (
	StageSelecting  Stage = "selecting"
	StageInvoking   Stage = "invoking"
	StageFormatting Stage = "formatting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// EventType identifies the kind of event emitted by an AnswerStream.
type EventType string

const (
	EventStage  EventType = "stage"
	EventDelta  EventType = "delta"
	EventResult EventType = "result"
)

// Event is the interface implemented by all events emitted through an
// AnswerStream.
type Event interface {
	Type() EventType
}

// StageEvent is emitted on every pipeline state transition.
type StageEvent struct {
	Stage Stage

	// Tool is the selected tool name, set from StageInvoking onward.
	Tool string
}

func (e *StageEvent) Type() EventType { return EventStage }

// DeltaEvent is emitted for each incremental text fragment of the final
// answer. Stage failures are delivered as a single DeltaEvent carrying the
// error message, followed by an error ResultEvent.
type DeltaEvent struct {
	Delta string
}

func (e *DeltaEvent) Type() EventType { return EventDelta }

// ResultEvent is emitted once at the end of a run.
type ResultEvent struct {
	RunID     string
	Text      string
	IsError   bool
	Usage     Usage
	TotalCost decimal.Decimal
}

func (e *ResultEvent) Type() EventType { return EventResult }
