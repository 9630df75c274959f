// ABOUTME: Contact reconciler syncing an edited working list to the store
// ABOUTME: Plans the minimal delete/update/create set and applies it row by row
package crm

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Operation is one planned contact write. Row is the working-list index,
// -1 for deletes of contacts absent from the list.
type Operation struct {
	Kind    OpKind
	Row     int
	ID      models.RecordID
	Contact models.ContactRow
}

// RowFailure is a write that was refused or rejected for one row. The rest
// of the batch is unaffected.
type RowFailure struct {
	Row int
	ID  models.RecordID
	Op  OpKind
	Err error
}

// ReconciliationRequest is everything a reconciliation pass needs: the
// contacts stored for a prospect and the list the user edited. Rejected
// holds rows whose id token could not be read; their Working slot is a
// blank placeholder.
type ReconciliationRequest struct {
	ProspectID models.RecordID
	Stored     []models.Contact
	Working    []models.ContactRow
	Rejected   []RowFailure
}

// Plan is the write set for one request. Deletes are applied first. Held
// are deletes withheld because a rejected row may have named the contact.
type Plan struct {
	Deletes  []Operation
	Held     []Operation
	Updates  []Operation
	Creates  []Operation
	Failures []RowFailure
}

func (p Plan) Operations() []Operation {
	ops := make([]Operation, 0, len(p.Deletes)+len(p.Updates)+len(p.Creates))
	ops = append(ops, p.Deletes...)
	ops = append(ops, p.Updates...)
	return append(ops, p.Creates...)
}

// Empty reports a plan with nothing to write.
func (p Plan) Empty() bool {
	return len(p.Deletes)+len(p.Updates)+len(p.Creates) == 0
}

type ReconcileResult struct {
	Applied []Operation
	Failed  []RowFailure
	// Held lists stored contacts left in place because a row had an
	// unreadable id.
	Held []Operation
	// Working is the input list with store-assigned ids filled in for the
	// rows that were created. Feeding it back yields an empty plan.
	Working []models.ContactRow
}

// PlanContacts computes the writes that make the stored contacts match the
// working list. It never deletes a row that is still listed, even when
// its name was cleared; clearing a saved name is reported as a validation
// failure for that row instead. While any row is rejected nothing is
// deleted.
func PlanContacts(req ReconciliationRequest) Plan {
	stored := make(map[models.RecordID]models.Contact, len(req.Stored))
	for _, c := range req.Stored {
		stored[c.ID] = c
	}

	kept := make(map[models.RecordID]bool)
	for _, row := range req.Working {
		if id, ok := row.ID.Get(); ok {
			if _, exists := stored[id]; exists {
				kept[id] = true
			}
		}
	}

	var plan Plan
	for _, c := range req.Stored {
		if !kept[c.ID] {
			plan.Deletes = append(plan.Deletes, Operation{Kind: OpDelete, Row: -1, ID: c.ID, Contact: c.Row()})
		}
	}
	sort.Slice(plan.Deletes, func(i, j int) bool { return plan.Deletes[i].ID < plan.Deletes[j].ID })
	if len(req.Rejected) > 0 {
		plan.Held, plan.Deletes = plan.Deletes, nil
		plan.Failures = append(plan.Failures, req.Rejected...)
	}

	seen := make(map[models.RecordID]int)
	for i, raw := range req.Working {
		row := raw.Normalized()
		id, hasID := row.ID.Get()

		if !hasID {
			if row.Blank() {
				continue
			}
			plan.Creates = append(plan.Creates, Operation{Kind: OpCreate, Row: i, Contact: row})
			continue
		}

		current, exists := stored[id]
		switch {
		case !exists:
			plan.Failures = append(plan.Failures, RowFailure{
				Row: i, ID: id, Op: OpUpdate,
				Err: &store.NotFoundError{Kind: store.KindContacts, ID: id},
			})
		case seen[id] > 0:
			plan.Failures = append(plan.Failures, RowFailure{
				Row: i, ID: id, Op: OpUpdate,
				Err: &ValidationError{Row: i, Field: "id", Reason: "contact listed twice"},
			})
		case row.Blank():
			plan.Failures = append(plan.Failures, RowFailure{
				Row: i, ID: id, Op: OpUpdate,
				Err: &ValidationError{Row: i, Field: "name", Reason: "name cleared on a saved contact; delete it explicitly"},
			})
		case !row.SameAs(current):
			plan.Updates = append(plan.Updates, Operation{Kind: OpUpdate, Row: i, ID: id, Contact: row})
		}
		seen[id]++
	}
	return plan
}

// ReconcileContacts loads the stored contacts of a prospect and applies the
// working list to them. Only an unreachable store or a missing prospect
// fails the call as a whole; row failures are collected in the result.
func (s *Service) ReconcileContacts(ctx context.Context, prospectID models.RecordID, working []models.ContactRow) (*ReconcileResult, error) {
	return s.ReconcileContactsWithRejects(ctx, prospectID, working, nil)
}

// ReconcileContactsWithRejects is ReconcileContacts for a list where some
// rows carried an id that could not be read. Those rows come back as
// failures and no stored contact is deleted in that pass.
func (s *Service) ReconcileContactsWithRejects(ctx context.Context, prospectID models.RecordID, working []models.ContactRow, rejected []RowFailure) (*ReconcileResult, error) {
	if _, err := s.getOne(ctx, store.KindProspects, prospectID); err != nil {
		return nil, err
	}
	stored, err := s.ListContacts(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	return s.ApplyReconciliation(ctx, ReconciliationRequest{
		ProspectID: prospectID,
		Stored:     stored,
		Working:    working,
		Rejected:   rejected,
	}), nil
}

// ApplyReconciliation writes the plan for req through the store, deletes
// first so a removed id can never be written again in the same pass.
func (s *Service) ApplyReconciliation(ctx context.Context, req ReconciliationRequest) *ReconcileResult {
	log := s.runLogger("reconcile_contacts").With(zap.Int64("prospect_id", int64(req.ProspectID)))
	plan := PlanContacts(req)

	result := &ReconcileResult{
		Failed:  append([]RowFailure(nil), plan.Failures...),
		Held:    plan.Held,
		Working: append([]models.ContactRow(nil), req.Working...),
	}

	for _, op := range plan.Operations() {
		var err error
		switch op.Kind {
		case OpDelete:
			err = s.store.Delete(ctx, store.KindContacts, op.ID)
		case OpUpdate:
			err = s.store.Update(ctx, store.KindContacts, op.ID, contactFields(op.Contact))
		case OpCreate:
			fields := contactFields(op.Contact)
			fields["prospect_id"] = req.ProspectID
			var id models.RecordID
			id, err = s.store.Create(ctx, store.KindContacts, fields)
			if err == nil {
				op.ID = id
				result.Working[op.Row].ID = models.SomeID(id)
			}
		}

		if err != nil {
			result.Failed = append(result.Failed, RowFailure{Row: op.Row, ID: op.ID, Op: op.Kind, Err: err})
			continue
		}
		log.Debug("contact written", zap.String("write", string(op.Kind)), zap.Int64("contact_id", int64(op.ID)))
		result.Applied = append(result.Applied, op)
	}

	sort.SliceStable(result.Failed, func(i, j int) bool { return result.Failed[i].Row < result.Failed[j].Row })
	for _, f := range result.Failed {
		log.Warn("contact row not saved",
			zap.Int("row", f.Row),
			zap.String("write", string(f.Op)),
			zap.Int64("contact_id", int64(f.ID)),
			zap.Error(f.Err),
		)
	}
	log.Info("contacts reconciled",
		zap.Int("applied", len(result.Applied)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("held", len(result.Held)),
	)
	return result
}
