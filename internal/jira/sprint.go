package jira

import (
	"strings"

	"github.com/clintrovert/relativity/pkg/types"
)

// ParseSprintField normalizes the shape-varying Jira sprint field into a
// canonical SprintInfo. The field arrives in one of three shapes
// depending on the Jira deployment: a list (of objects or encoded
// strings), a single object, or a plain string. Unknown shapes produce
// an empty name with SprintUnknown rather than an error.
func ParseSprintField(raw interface{}) types.SprintInfo {
	switch v := raw.(type) {
	case []interface{}:
		// The list is ordered oldest first; the last entry is the
		// sprint the task currently sits in.
		for i := len(v) - 1; i >= 0; i-- {
			info := ParseSprintField(v[i])
			if info.Name != "" || info.Status != types.SprintUnknown {
				return info
			}
		}
		return types.SprintInfo{Status: types.SprintUnknown}
	case map[string]interface{}:
		return sprintFromObject(v)
	case string:
		return sprintFromString(v)
	default:
		return types.SprintInfo{Status: types.SprintUnknown}
	}
}

func sprintFromObject(obj map[string]interface{}) types.SprintInfo {
	info := types.SprintInfo{Status: types.SprintUnknown}
	if name, ok := obj["name"].(string); ok {
		info.Name = name
	}
	if state, ok := obj["state"].(string); ok {
		info.Status = sprintStatus(state)
	}
	return info
}

// sprintFromString handles both the greenhopper encoding
// ("...Sprint@1a2b[id=1,state=ACTIVE,name=Sprint 5,...]") and a bare
// sprint name.
func sprintFromString(s string) types.SprintInfo {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.SprintInfo{Status: types.SprintUnknown}
	}

	open := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if open == -1 || end == -1 || end < open {
		// Bare name, no state information available.
		return types.SprintInfo{Name: s, Status: types.SprintUnknown}
	}

	info := types.SprintInfo{Status: types.SprintUnknown}
	for _, pair := range strings.Split(s[open+1:end], ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "name":
			info.Name = strings.TrimSpace(value)
		case "state":
			info.Status = sprintStatus(value)
		}
	}
	return info
}

func sprintStatus(state string) types.SprintStatus {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "active":
		return types.SprintActive
	case "closed":
		return types.SprintClosed
	case "future":
		return types.SprintFuture
	default:
		return types.SprintUnknown
	}
}
