package model

import "encoding/json"

// EventType tags a PipelineEvent.
type EventType string

const (
	EventStatus         EventType = "status"
	EventCompanyResult  EventType = "company_result"
	EventProgress       EventType = "progress"
	EventMarketInsights EventType = "market_insights"
	EventError          EventType = "error"
	EventDone           EventType = "done"
)

// PipelineEvent is one entry in the ordered event stream of a research
// run. Ordering invariants: at least one status precedes any
// company_result; progress immediately follows its company_result; done or
// error is always terminal.
type PipelineEvent struct {
	Type     EventType
	Message  string
	Company  *CompanyAnalysis
	Insights string
	Current  int
	Total    int
}

// MarshalJSON renders the wire shape for each event type. company_result
// and market_insights both carry their payload under "data", so the
// encoding cannot come from struct tags alone.
func (e PipelineEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventCompanyResult:
		return json.Marshal(struct {
			Type EventType        `json:"type"`
			Data *CompanyAnalysis `json:"data"`
		}{e.Type, e.Company})
	case EventProgress:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Current int       `json:"current"`
			Total   int       `json:"total"`
		}{e.Type, e.Current, e.Total})
	case EventMarketInsights:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Data string    `json:"data"`
		}{e.Type, e.Insights})
	case EventDone:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	default: // status, error
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	}
}

// StatusEvent builds a status event.
func StatusEvent(message string) PipelineEvent {
	return PipelineEvent{Type: EventStatus, Message: message}
}

// CompanyEvent builds a company_result event.
func CompanyEvent(analysis CompanyAnalysis) PipelineEvent {
	return PipelineEvent{Type: EventCompanyResult, Company: &analysis}
}

// ProgressEvent builds a progress event.
func ProgressEvent(current, total int) PipelineEvent {
	return PipelineEvent{Type: EventProgress, Current: current, Total: total}
}

// InsightsEvent builds a market_insights event.
func InsightsEvent(report string) PipelineEvent {
	return PipelineEvent{Type: EventMarketInsights, Insights: report}
}

// ErrorEvent builds a terminal error event.
func ErrorEvent(message string) PipelineEvent {
	return PipelineEvent{Type: EventError, Message: message}
}

// DoneEvent builds the terminal done event.
func DoneEvent() PipelineEvent {
	return PipelineEvent{Type: EventDone}
}
