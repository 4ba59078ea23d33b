package types

import (
	"strings"
	"time"
)

// SprintStatus is the lifecycle bucket of the sprint a task belongs to.
type SprintStatus string

const (
	SprintActive  SprintStatus = "Active"
	SprintClosed  SprintStatus = "Closed"
	SprintFuture  SprintStatus = "Future"
	SprintUnknown SprintStatus = "Unknown"
)

// SprintInfo is the canonical (name, status) pair extracted from the
// tracker's sprint field, whatever shape that field arrived in.
type SprintInfo struct {
	Name   string
	Status SprintStatus
}

// TaskRecord is a normalized tracker task. It is created by the Jira
// normalizer and annotated in place by the later pipeline stages with
// commits, the estimated hours figure and the business category.
type TaskRecord struct {
	ID       string
	Title    string
	Type     string
	Priority string
	Status   string
	Sprint   SprintInfo
	Assignee string

	Created  *time.Time
	Updated  *time.Time
	Resolved *time.Time

	// Tracker-reported time figures, in hours.
	LoggedHours    float64
	AggregateHours float64
	EstimateHours  float64

	// Annotations filled in by the correlator, estimator and classifier.
	Commits          []CommitRecord
	RepoCommits      map[string]int
	EstimatedHours   float64
	BusinessCategory string
}

// Completed reports whether the task counts as delivered: it has at
// least one correlated commit or a terminal tracker status.
func (t *TaskRecord) Completed() bool {
	if len(t.Commits) > 0 {
		return true
	}
	switch strings.ToLower(t.Status) {
	case "done", "closed", "resolved":
		return true
	}
	return false
}

// CommitRecord is a single version-control commit correlated to a task.
// Immutable once fetched.
type CommitRecord struct {
	Hash       string
	Message    string
	AuthoredAt time.Time
	Repository string
}

// ShortHash returns the abbreviated commit hash used in report output.
func (c CommitRecord) ShortHash() string {
	if len(c.Hash) <= 8 {
		return c.Hash
	}
	return c.Hash[:8]
}
