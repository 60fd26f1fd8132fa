package demo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	queries []string
	failOn  string
}

func (r *recordingRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	r.queries = append(r.queries, query)
	if r.failOn != "" && strings.Contains(query, r.failOn) {
		return nil, errors.New("write rejected")
	}
	return &neo4j.EagerResult{}, nil
}

func (r *recordingRunner) count(substr string) int {
	n := 0
	for _, q := range r.queries {
		if strings.Contains(q, substr) {
			n++
		}
	}
	return n
}

func TestSeedSample(t *testing.T) {
	runner := &recordingRunner{}

	stats, err := Seed(context.Background(), runner, Sample())
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 8, Relationships: 7}, stats)

	// 8 deletes, 8 merges, 7 relationships
	assert.Len(t, runner.queries, 23)
	assert.Equal(t, 3, runner.count("OFFERS"))
	assert.Equal(t, 4, runner.count("PUBLISHES"))
}

func TestSeedUnknownReference(t *testing.T) {
	ds := Sample()
	ds.Offers = append(ds.Offers, Offer{Payor: "cigna", PlanID: "uhc-navigate"})

	_, err := Seed(context.Background(), &recordingRunner{}, ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cigna")

	ds = Sample()
	ds.Publications = append(ds.Publications, Publication{PlanID: "uhc-navigate", FileName: "missing.pdf"})
	_, err = Seed(context.Background(), &recordingRunner{}, ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestSeedStopsOnWriteError(t *testing.T) {
	runner := &recordingRunner{failOn: "PUBLISHES"}

	stats, err := Seed(context.Background(), runner, Sample())
	require.Error(t, err)
	assert.Equal(t, 8, stats.Nodes)
	assert.Equal(t, 3, stats.Relationships)
}

func TestSampleIsConsistent(t *testing.T) {
	ds := Sample()
	plans := map[string]bool{}
	for _, p := range ds.Plans {
		plans[p.PlanID] = true
	}
	for _, o := range ds.Offers {
		assert.True(t, plans[o.PlanID], "offer of unknown plan %s", o.PlanID)
	}
	for _, p := range ds.Publications {
		assert.True(t, plans[p.PlanID], "publication of unknown plan %s", p.PlanID)
	}
}
