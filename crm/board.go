// ABOUTME: Kanban-style grouping of prospects by stage
// ABOUTME: Columns follow the pipeline order with Lost last
package crm

import (
	"context"

	"github.com/harperreed/prospecta/models"
)

type Column struct {
	Stage     models.Stage
	Prospects []models.Prospect
}

// Board groups prospects into one column per stage, every stage present
// even when empty. Prospects with an unknown stage are left out.
func Board(prospects []models.Prospect) []Column {
	stages := models.AllStages()
	index := make(map[models.Stage]int, len(stages))
	cols := make([]Column, len(stages))
	for i, st := range stages {
		index[st] = i
		cols[i].Stage = st
	}
	for _, p := range prospects {
		if i, ok := index[p.Stage]; ok {
			cols[i].Prospects = append(cols[i].Prospects, p)
		}
	}
	for i := range cols {
		sortByLastAction(cols[i].Prospects)
	}
	return cols
}

// Board loads every prospect and groups it by stage.
func (s *Service) Board(ctx context.Context) ([]Column, error) {
	ps, err := s.ListProspects(ctx, "")
	if err != nil {
		return nil, err
	}
	return Board(ps), nil
}
