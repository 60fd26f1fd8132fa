package demo

import (
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
)

// Stats counts what Seed wrote.
type Stats struct {
	Nodes         int
	Relationships int
}

// Seed writes ds through runner. Existing nodes with the same primary keys are detached
// and deleted first, so seeding twice leaves a single copy of every relationship.
func Seed(ctx context.Context, runner neoviz.DBRunner, ds Dataset) (Stats, error) {
	var stats Stats

	payors, err := neoviz.NewStore[Payor](runner)
	if err != nil {
		return stats, err
	}
	plans, err := neoviz.NewStore[Plan](runner)
	if err != nil {
		return stats, err
	}
	docs, err := neoviz.NewStore[Document](runner)
	if err != nil {
		return stats, err
	}

	for _, p := range ds.Payors {
		if err := payors.Delete(ctx, p.Name); err != nil {
			return stats, err
		}
	}
	for _, p := range ds.Plans {
		if err := plans.Delete(ctx, p.PlanID); err != nil {
			return stats, err
		}
	}
	for _, d := range ds.Documents {
		if err := docs.Delete(ctx, d.FileName); err != nil {
			return stats, err
		}
	}

	payorByName := make(map[string]*Payor, len(ds.Payors))
	for i := range ds.Payors {
		p := &ds.Payors[i]
		if err := payors.Save(ctx, p); err != nil {
			return stats, err
		}
		payorByName[p.Name] = p
		stats.Nodes++
	}
	planByID := make(map[string]*Plan, len(ds.Plans))
	for i := range ds.Plans {
		p := &ds.Plans[i]
		if err := plans.Save(ctx, p); err != nil {
			return stats, err
		}
		planByID[p.PlanID] = p
		stats.Nodes++
	}
	docByName := make(map[string]*Document, len(ds.Documents))
	for i := range ds.Documents {
		d := &ds.Documents[i]
		if err := docs.Save(ctx, d); err != nil {
			return stats, err
		}
		docByName[d.FileName] = d
		stats.Nodes++
	}

	linker := neoviz.NewLinker(runner)
	for _, o := range ds.Offers {
		payor, plan := payorByName[o.Payor], planByID[o.PlanID]
		if payor == nil || plan == nil {
			return stats, fmt.Errorf("offer %s -> %s references an unknown entity", o.Payor, o.PlanID)
		}
		if err := linker.Relate(ctx, payor, plan, "OFFERS", nil); err != nil {
			return stats, err
		}
		stats.Relationships++
	}
	for _, p := range ds.Publications {
		plan, doc := planByID[p.PlanID], docByName[p.FileName]
		if plan == nil || doc == nil {
			return stats, fmt.Errorf("publication %s -> %s references an unknown entity", p.PlanID, p.FileName)
		}
		if err := linker.Relate(ctx, plan, doc, "PUBLISHES", nil); err != nil {
			return stats, err
		}
		stats.Relationships++
	}

	return stats, nil
}
