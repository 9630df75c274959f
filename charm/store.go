// ABOUTME: Key-value implementation of the entity store adapter
// ABOUTME: Records are JSON documents under kind/id keys with a per-kind id sequence

package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

var (
	_ store.Store    = (*Store)(nil)
	_ store.Importer = (*Store)(nil)
)

// Store keeps every record as a JSON document in the KV. It has no
// transactions; id allocation is serialized in-process.
type Store struct {
	client *Client
	seqMu  sync.Mutex
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func recordKey(kind store.Kind, id models.RecordID) []byte {
	return []byte(fmt.Sprintf("%s/%012d", kind, id))
}

func seqKey(kind store.Kind) []byte {
	return []byte("seq/" + string(kind))
}

func (s *Store) List(_ context.Context, kind store.Kind, filter store.Filter) ([]store.Record, error) {
	if err := store.CheckKind(kind); err != nil {
		return nil, err
	}

	// A single-id filter is a point lookup.
	if raw, ok := filter["id"]; ok && len(filter) == 1 {
		id, err := models.ParseRecordID(raw)
		if err != nil {
			return nil, fmt.Errorf("filter %s id: %w", kind, err)
		}
		rec, err := s.get(kind, id)
		if store.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []store.Record{rec}, nil
	}

	keys, err := s.client.KeysWithPrefix(string(kind) + "/")
	if err != nil {
		return nil, &store.TransientIOError{Op: "list", Kind: kind, Err: err}
	}

	var out []store.Record
	for _, key := range keys {
		id, err := idFromKey(kind, key)
		if err != nil {
			continue
		}
		rec, err := s.get(kind, id)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if store.Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Create(ctx context.Context, kind store.Kind, fields store.Fields) (models.RecordID, error) {
	if err := store.CheckKind(kind); err != nil {
		return 0, err
	}
	if err := s.checkParent(kind, fields); err != nil {
		return 0, err
	}

	id, err := s.nextID(kind)
	if err != nil {
		return 0, err
	}
	if err := s.put(kind, id, fields); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Update(_ context.Context, kind store.Kind, id models.RecordID, fields store.Fields) error {
	if err := store.CheckKind(kind); err != nil {
		return err
	}

	rec, err := s.get(kind, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec.Fields[k] = v
	}
	return s.put(kind, id, rec.Fields)
}

func (s *Store) Delete(_ context.Context, kind store.Kind, id models.RecordID) error {
	if err := store.CheckKind(kind); err != nil {
		return err
	}
	if _, err := s.get(kind, id); err != nil {
		return err
	}
	if err := s.client.Delete(recordKey(kind, id)); err != nil {
		return &store.TransientIOError{Op: "delete", Kind: kind, Err: err}
	}
	return nil
}

// Import writes rec under its own id and moves the sequence past it.
func (s *Store) Import(_ context.Context, kind store.Kind, rec store.Record) error {
	if err := store.CheckKind(kind); err != nil {
		return err
	}
	if !rec.ID.Valid() {
		return fmt.Errorf("import %s: %w", kind, models.ErrInvalidID)
	}
	if err := s.put(kind, rec.ID, rec.Fields); err != nil {
		return err
	}

	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	current, err := s.readSeq(kind)
	if err != nil {
		return err
	}
	if rec.ID > current {
		return s.writeSeq(kind, rec.ID)
	}
	return nil
}

// checkParent refuses children of prospects that do not exist, matching
// the foreign keys of the relational backend.
func (s *Store) checkParent(kind store.Kind, fields store.Fields) error {
	if kind == store.KindProspects {
		return nil
	}
	pid := fields.ID("prospect_id")
	if _, err := s.get(store.KindProspects, pid); err != nil {
		return err
	}
	return nil
}

func (s *Store) nextID(kind store.Kind) (models.RecordID, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	current, err := s.readSeq(kind)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := s.writeSeq(kind, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) readSeq(kind store.Kind) (models.RecordID, error) {
	raw, err := s.client.Get(seqKey(kind))
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &store.TransientIOError{Op: "sequence", Kind: kind, Err: err}
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s sequence: %w: %w", kind, store.ErrCorruptRecord, err)
	}
	return models.RecordID(n), nil
}

func (s *Store) writeSeq(kind store.Kind, id models.RecordID) error {
	if err := s.client.Set(seqKey(kind), []byte(id.String())); err != nil {
		return &store.TransientIOError{Op: "sequence", Kind: kind, Err: err}
	}
	return nil
}

func (s *Store) get(kind store.Kind, id models.RecordID) (store.Record, error) {
	raw, err := s.client.Get(recordKey(kind, id))
	if errors.Is(err, ErrKeyNotFound) {
		return store.Record{}, &store.NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return store.Record{}, &store.TransientIOError{Op: "get", Kind: kind, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	fields := store.Fields{}
	if err := dec.Decode(&fields); err != nil {
		return store.Record{}, fmt.Errorf("decode %s %d: %w: %w", kind, id, store.ErrCorruptRecord, err)
	}
	delete(fields, "id")
	return store.Record{ID: id, Fields: fields}, nil
}

func (s *Store) put(kind store.Kind, id models.RecordID, fields store.Fields) error {
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = store.Normalize(v)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s %d: %w", kind, id, err)
	}
	if err := s.client.Set(recordKey(kind, id), raw); err != nil {
		return &store.TransientIOError{Op: "put", Kind: kind, Err: err}
	}
	return nil
}

func idFromKey(kind store.Kind, key []byte) (models.RecordID, error) {
	return models.ParseRecordID(strings.TrimPrefix(string(key), string(kind)+"/"))
}
