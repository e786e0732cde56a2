// Package agui implements AG-UI protocol SSE streaming for scenario runs.
package agui

import "time"

// EventType identifies an AG-UI event.
type EventType string

const (
	EventRunStarted    EventType = "RUN_STARTED"
	EventRunFinished   EventType = "RUN_FINISHED"
	EventRunError      EventType = "RUN_ERROR"
	EventStepStarted   EventType = "STEP_STARTED"
	EventStepFinished  EventType = "STEP_FINISHED"
	EventStateSnapshot EventType = "STATE_SNAPSHOT"
	EventStateDelta    EventType = "STATE_DELTA"
)

// Steps of a scenario run, in order.
const (
	StepResolve   = "resolve"
	StepDecompose = "decompose"
	StepRender    = "render"
)

// Event is a single SSE event emitted to the client.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Scenario  string    `json:"scenario"`
	Data      any       `json:"data,omitempty"`
}

// StateSnapshotData carries the finished report and its UI schema.
type StateSnapshotData struct {
	State    any `json:"state"`
	UISchema any `json:"ui_schema"`
}

// StateDeltaData carries the patches for one decomposed segment.
type StateDeltaData struct {
	Step    string  `json:"step"`
	Patches []Patch `json:"patches"`
}

// Patch is an RFC 6902-style JSON Patch operation.
type Patch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// StepData carries step transition info.
type StepData struct {
	Step string `json:"step"`
}

// ErrorData carries error info for RUN_ERROR events.
type ErrorData struct {
	Message string `json:"message"`
}

// FinishedData carries the outcome in a RUN_FINISHED event.
type FinishedData struct {
	Reason    string `json:"reason"`
	Segments  int    `json:"segments"`
	TopFactor string `json:"top_factor,omitempty"`
}
