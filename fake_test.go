package neoviz

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// call is one query seen by fakeRunner.
type call struct {
	query  string
	params map[string]any
}

// fakeRunner is an in-memory DBRunner returning canned results.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	result *neo4j.EagerResult
	err    error
	// respond, when set, takes precedence over result and err.
	respond func(query string, params map[string]any) (*neo4j.EagerResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{query: query, params: params})
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(query, params)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &neo4j.EagerResult{}, nil
	}
	return f.result, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func dbNode(id string, labels []string, props map[string]any) neo4j.Node {
	return neo4j.Node{ElementId: id, Labels: labels, Props: props}
}

func dbRel(id, typ, start, end string, props map[string]any) neo4j.Relationship {
	return neo4j.Relationship{ElementId: id, Type: typ, StartElementId: start, EndElementId: end, Props: props}
}

func result(keys []string, rows ...[]any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Keys: keys}
	for _, values := range rows {
		res.Records = append(res.Records, &neo4j.Record{Keys: keys, Values: values})
	}
	return res
}

// mentions reports whether value appears in the query text or among the parameters, so
// tests do not depend on whether the builder inlines or parameterises literals.
func mentions(query string, params map[string]any, value any) bool {
	if strings.Contains(query, fmt.Sprint(value)) {
		return true
	}
	for _, v := range params {
		if v == value {
			return true
		}
		if m, ok := v.(map[string]any); ok {
			for _, inner := range m {
				if inner == value {
					return true
				}
			}
		}
	}
	return false
}
