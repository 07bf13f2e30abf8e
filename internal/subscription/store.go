// Package subscription keeps the per-group subscription lists and writes
// the whole document back to disk after every change.
package subscription

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/market"
)

var (
	ErrDuplicate       = errors.New("security already subscribed")
	ErrNotSubscribed   = errors.New("security not subscribed")
	ErrNoSubscriptions = errors.New("group has no subscriptions")
)

// Group is the subscription state of one chat group.
type Group struct {
	List   []market.Security `json:"list"`
	Notify bool              `json:"notify"`
}

// Document is the persisted shape of the store.
type Document struct {
	Group map[string]*Group `json:"group"`
}

func (d *Document) clone() Document {
	out := Document{Group: make(map[string]*Group, len(d.Group))}
	for gid, g := range d.Group {
		out.Group[gid] = &Group{List: slices.Clone(g.List), Notify: g.Notify}
	}
	return out
}

// Persister loads and saves the whole document.
type Persister interface {
	Load() (*Document, error)
	Save(doc *Document) error
}

// Store is the process-wide subscription state. All methods are safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	doc       Document
	persister Persister
	logger    *logger.Logger
}

// NewStore loads the document once through p. A load failure is logged
// and the store starts empty.
func NewStore(p Persister, log *logger.Logger) *Store {
	s := &Store{persister: p, logger: log}
	doc, err := p.Load()
	if err != nil {
		log.Error("load subscriptions", "error", err)
	}
	if doc != nil {
		s.doc = *doc
	}
	if s.doc.Group == nil {
		s.doc.Group = make(map[string]*Group)
	}
	for gid, g := range s.doc.Group {
		if g == nil {
			s.doc.Group[gid] = &Group{List: []market.Security{}, Notify: true}
		}
	}
	return s
}

// Get returns a copy of the group. With autoCreate an absent group is
// created as {list: [], notify: true} (not persisted until mutated).
func (s *Store) Get(gid string, autoCreate bool) (Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(gid, autoCreate)
	if g == nil {
		return Group{}, false
	}
	return Group{List: slices.Clone(g.List), Notify: g.Notify}, true
}

// Add appends sec to the group's list, creating the group if needed.
func (s *Store) Add(gid string, sec market.Security) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(gid, true)
	if slices.ContainsFunc(g.List, sec.Same) {
		return ErrDuplicate
	}
	g.List = append(g.List, sec)
	s.save()
	return nil
}

// Remove drops sec from the group's list.
func (s *Store) Remove(gid string, sec market.Security) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(gid, false)
	if g == nil || len(g.List) == 0 {
		return ErrNoSubscriptions
	}
	kept := slices.DeleteFunc(slices.Clone(g.List), sec.Same)
	if len(kept) == len(g.List) {
		return ErrNotSubscribed
	}
	g.List = kept
	s.save()
	return nil
}

// Clear empties the group's list.
func (s *Store) Clear(gid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(gid, false)
	if g == nil || len(g.List) == 0 {
		return ErrNoSubscriptions
	}
	g.List = []market.Security{}
	s.save()
	return nil
}

// SetNotify switches scheduled pushes for the group. It reports whether
// the flag changed; an unchanged flag is not written.
func (s *Store) SetNotify(gid string, on bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.group(gid, false)
	if g == nil {
		return false, ErrNoSubscriptions
	}
	if g.Notify == on {
		return false, nil
	}
	g.Notify = on
	s.save()
	return true, nil
}

// Groups returns the known group ids in sorted order.
func (s *Store) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.doc.Group))
	for gid := range s.doc.Group {
		ids = append(ids, gid)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy of the document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone()
}

func (s *Store) group(gid string, autoCreate bool) *Group {
	g, ok := s.doc.Group[gid]
	if !ok {
		if !autoCreate {
			return nil
		}
		g = &Group{List: []market.Security{}, Notify: true}
		s.doc.Group[gid] = g
	}
	return g
}

// save writes the document. Failures are logged; the in-memory state
// stays authoritative for the life of the process.
func (s *Store) save() {
	if err := s.persister.Save(&s.doc); err != nil {
		s.logger.Error("save subscriptions", "error", err)
	}
}
