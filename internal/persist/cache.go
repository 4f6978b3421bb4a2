package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/tabula/schema"
)

// CachedDocumentPrefix prefixes every per-document snapshot key.
const CachedDocumentPrefix = "cached-document-"

// CachedDocumentKey returns the KV key holding the snapshot for id.
func CachedDocumentKey(id schema.DocumentID) string {
	return CachedDocumentPrefix + id.String()
}

// Cache maps document ids to snapshots and scrubs entries for ids that
// leave the open set.
type Cache struct {
	kv    KV
	log   pslog.Logger
	known []schema.DocumentID
}

// NewCache wraps kv.
func NewCache(kv KV, logger pslog.Logger) *Cache {
	return &Cache{kv: kv, log: logger}
}

// Put writes the snapshot for id unconditionally.
func (c *Cache) Put(id schema.DocumentID, snapshot schema.DocumentSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := c.kv.Set(CachedDocumentKey(id), string(data)); err != nil {
		return fmt.Errorf("cache document %s: %w", id, err)
	}
	return nil
}

// Get reads the snapshot for id. Missing entries wrap schema.ErrNotFound and
// undecodable ones wrap schema.ErrParse.
func (c *Cache) Get(id schema.DocumentID) (schema.DocumentSnapshot, error) {
	raw, ok, err := c.kv.Get(CachedDocumentKey(id))
	if err != nil {
		return schema.DocumentSnapshot{}, err
	}
	if !ok {
		return schema.DocumentSnapshot{}, fmt.Errorf("cached document %s: %w", id, schema.ErrNotFound)
	}
	var snapshot schema.DocumentSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return schema.DocumentSnapshot{}, fmt.Errorf("cached document %s: %w: %v", id, schema.ErrParse, err)
	}
	return snapshot, nil
}

// Has reports whether a snapshot exists for id.
func (c *Cache) Has(id schema.DocumentID) (bool, error) {
	_, ok, err := c.kv.Get(CachedDocumentKey(id))
	return ok, err
}

// Remove deletes the snapshot for id.
func (c *Cache) Remove(id schema.DocumentID) error {
	return c.kv.Remove(CachedDocumentKey(id))
}

// Seed sets the last known open id list, normally from persisted state.
func (c *Cache) Seed(ids []schema.DocumentID) {
	c.known = append([]schema.DocumentID(nil), ids...)
}

// Known returns the last reconciled open id list.
func (c *Cache) Known() []schema.DocumentID {
	return append([]schema.DocumentID(nil), c.known...)
}

// Reconcile diffs current against the last known open ids. Newly present ids
// without a snapshot get one from ensure; ids no longer present lose theirs.
// Every id is attempted; failures are joined.
func (c *Cache) Reconcile(current []schema.DocumentID, ensure func(schema.DocumentID) error) error {
	previous := make(map[schema.DocumentID]struct{}, len(c.known))
	for _, id := range c.known {
		previous[id] = struct{}{}
	}
	now := make(map[schema.DocumentID]struct{}, len(current))
	var errs []error
	for _, id := range current {
		now[id] = struct{}{}
		if _, ok := previous[id]; ok {
			continue
		}
		exists, err := c.Has(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !exists && ensure != nil {
			if err := ensure(id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	removed := 0
	for _, id := range c.known {
		if _, ok := now[id]; ok {
			continue
		}
		if err := c.Remove(id); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	c.known = append([]schema.DocumentID(nil), current...)
	if c.log != nil && removed > 0 {
		c.log.Debug("cache reconcile scrubbed", "removed", removed, "open", len(current))
	}
	return errors.Join(errs...)
}

// IDs lists the ids of every stored snapshot. Keys whose suffix is not a
// document id are skipped.
func (c *Cache) IDs() ([]schema.DocumentID, error) {
	keys, err := c.kv.Keys(CachedDocumentPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]schema.DocumentID, 0, len(keys))
	for _, key := range keys {
		if id, ok := parseCachedKey(key); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Sweep removes every snapshot whose id is not in keep, including keys with
// a malformed id suffix. It returns the number of entries removed.
func (c *Cache) Sweep(keep []schema.DocumentID) (int, error) {
	keys, err := c.kv.Keys(CachedDocumentPrefix)
	if err != nil {
		return 0, err
	}
	wanted := make(map[schema.DocumentID]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}
	removed := 0
	var errs []error
	for _, key := range keys {
		if id, ok := parseCachedKey(key); ok {
			if _, keepIt := wanted[id]; keepIt {
				continue
			}
		}
		if err := c.kv.Remove(key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if c.log != nil && removed > 0 {
		c.log.Info("cache orphans swept", "removed", removed)
	}
	return removed, errors.Join(errs...)
}

func parseCachedKey(key string) (schema.DocumentID, bool) {
	suffix := strings.TrimPrefix(key, CachedDocumentPrefix)
	if suffix == key || suffix == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return schema.DocumentID(n), true
}
