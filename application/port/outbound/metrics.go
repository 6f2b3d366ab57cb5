package outbound

// WorkflowMetrics records change request workflow counters
type WorkflowMetrics interface {
	RequestCreated(requestType string)
	RequestResolved(requestType string, outcome string)
	MutationFailed(requestType string)
	RequestsCleared(count int64)
}
