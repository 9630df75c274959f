// ABOUTME: Sequential unit of work over a store without transactions
// ABOUTME: Turns a failure after the first step into a PartialFailure
package crm

import (
	"context"
	"time"

	"github.com/harperreed/prospecta/models"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

type unit struct {
	op         string
	prospectID models.RecordID
	at         time.Time
	steps      []step
}

func newUnit(op string, prospectID models.RecordID, at time.Time) *unit {
	return &unit{op: op, prospectID: prospectID, at: at}
}

func (u *unit) then(name string, run func(ctx context.Context) error) *unit {
	u.steps = append(u.steps, step{name: name, run: run})
	return u
}

// run executes the steps in order. A failing first step is returned as is,
// so the operation simply did not happen. Later failures leave earlier
// writes in place and come back as a *PartialFailure.
func (u *unit) run(ctx context.Context) (*PartialFailure, error) {
	var completed []string
	for i, st := range u.steps {
		err := st.run(ctx)
		if err == nil {
			completed = append(completed, st.name)
			continue
		}
		if i == 0 {
			return nil, err
		}
		pf := &PartialFailure{
			Op:         u.op,
			Completed:  completed,
			Failed:     st.name,
			Err:        err,
			ProspectID: u.prospectID,
			At:         u.at,
			remaining:  u.steps[i:],
		}
		return pf, pf
	}
	return nil, nil
}
