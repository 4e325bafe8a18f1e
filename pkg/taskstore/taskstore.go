// Package taskstore journals long-running provider tasks so their status
// can be inspected after the node that started them has returned.
//
// Key layout:
//
//	task:{kind}:{id}  → msgpack-encoded Record
//
// A record whose status is terminal (success or failed) never changes
// status again; Put returns ErrTerminal instead.
package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/kv"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/vmihailenco/msgpack/v5"
)

// Task kinds.
const (
	KindVideo = "video"
)

var (
	// ErrNotFound is returned by Get for an unknown task.
	ErrNotFound = errors.New("taskstore: task not found")

	// ErrTerminal is returned by Put when the stored status is terminal and
	// the new status differs.
	ErrTerminal = errors.New("taskstore: task already in a terminal state")
)

// Record is one journaled task.
type Record struct {
	ID       string `msgpack:"id" json:"id"`
	Kind     string `msgpack:"kind" json:"kind"`
	Model    string `msgpack:"model,omitempty" json:"model,omitempty"`
	Status   string `msgpack:"status" json:"status"`
	FileID   string `msgpack:"file_id,omitempty" json:"file_id,omitempty"`
	VideoURL string `msgpack:"video_url,omitempty" json:"video_url,omitempty"`

	// CreatedAt and UpdatedAt are Unix milliseconds.
	CreatedAt int64 `msgpack:"created_at" json:"created_at"`
	UpdatedAt int64 `msgpack:"updated_at" json:"updated_at"`
}

// Terminal reports whether the record's status can no longer change.
func (r *Record) Terminal() bool {
	return minimax.TaskStatus(r.Status).Phase().Terminal()
}

// Journal stores task records in a kv.Store.
type Journal struct {
	store kv.Store
	now   func() time.Time
}

// New creates a Journal on store.
func New(store kv.Store) *Journal {
	return &Journal{store: store, now: time.Now}
}

func taskKey(kind, id string) kv.Key {
	return kv.Key{"task", kind, id}
}

// Put records an observation of a task and returns the stored record.
//
// Empty FileID, VideoURL and Model keep their previous values. CreatedAt
// is set on first insert only.
func (j *Journal) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" || rec.Kind == "" {
		return Record{}, errors.New("taskstore: id and kind are required")
	}
	now := j.now().UnixMilli()

	var stored Record
	err := j.store.Update(ctx, taskKey(rec.Kind, rec.ID), func(old []byte, found bool) ([]byte, error) {
		next := rec
		if found {
			var prev Record
			if err := msgpack.Unmarshal(old, &prev); err != nil {
				return nil, fmt.Errorf("taskstore: decode %s/%s: %w", rec.Kind, rec.ID, err)
			}
			if prev.Terminal() && prev.Status != rec.Status {
				return nil, fmt.Errorf("%w: %s/%s is %s, refusing %s", ErrTerminal, rec.Kind, rec.ID, prev.Status, rec.Status)
			}
			next.CreatedAt = prev.CreatedAt
			if next.FileID == "" {
				next.FileID = prev.FileID
			}
			if next.VideoURL == "" {
				next.VideoURL = prev.VideoURL
			}
			if next.Model == "" {
				next.Model = prev.Model
			}
		} else {
			next.CreatedAt = now
		}
		next.UpdatedAt = now

		data, err := msgpack.Marshal(&next)
		if err != nil {
			return nil, fmt.Errorf("taskstore: encode %s/%s: %w", rec.Kind, rec.ID, err)
		}
		stored = next
		return data, nil
	})
	if err != nil {
		return Record{}, err
	}
	return stored, nil
}

// Get returns the record for a task.
func (j *Journal) Get(ctx context.Context, kind, id string) (Record, error) {
	data, err := j.store.Get(ctx, taskKey(kind, id))
	if errors.Is(err, kv.ErrNotFound) {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("taskstore: decode %s/%s: %w", kind, id, err)
	}
	return rec, nil
}

// List returns every record of a kind, ordered by id.
func (j *Journal) List(ctx context.Context, kind string) ([]Record, error) {
	var out []Record
	for entry, err := range j.store.List(ctx, kv.Key{"task", kind}) {
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := msgpack.Unmarshal(entry.Value, &rec); err != nil {
			return nil, fmt.Errorf("taskstore: decode %s: %w", entry.Key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes a task record.
func (j *Journal) Delete(ctx context.Context, kind, id string) error {
	return j.store.Delete(ctx, taskKey(kind, id))
}
