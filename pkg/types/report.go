package types

import "time"

// Metrics is the aggregate derived from the full task set. It is
// recomputed fresh each run and never stored on individual tasks.
type Metrics struct {
	TotalTasks        int
	CompletedTasks    int
	CompletionRate    float64
	TotalHours        float64
	HighPriorityTasks int
}

// Section is one named block of report prose. The assembler renders
// sections in order; the generator never concatenates raw report text.
type Section struct {
	Name  string
	Title string
	Body  string
}

// Report is the finalized pipeline output handed to report assembly.
type Report struct {
	Assignee    string
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time

	Tasks    []*TaskRecord
	Metrics  Metrics
	Sections []Section
}
