package coverage

import (
	"sort"
	"strings"

	"github.com/jihwankim/covcrv/pkg/coverage/coverr"
)

// CoverageDB is the process-scoped registry mapping dotted names to
// CoverItems. It is a singleton, lazily created on first access, and not
// safe for concurrent use from multiple goroutines (see the single-threaded
// cooperative concurrency model this core assumes).
type CoverageDB struct {
	root           *CoverItem
	items          map[string]*CoverItem
	crossesByPoint map[string][]*CoverItem
}

func newCoverageDB() *CoverageDB {
	return &CoverageDB{
		root:           newContainer("", nil),
		items:          make(map[string]*CoverItem),
		crossesByPoint: make(map[string][]*CoverItem),
	}
}

var globalDB *CoverageDB

// DB returns the process-wide CoverageDB singleton, creating it on first
// access.
func DB() *CoverageDB {
	if globalDB == nil {
		globalDB = newCoverageDB()
	}
	return globalDB
}

// ResetDB replaces the process-wide singleton with a fresh, empty database.
// Intended for test isolation between otherwise-independent test cases that
// each want their own coverage model.
func ResetDB() {
	globalDB = newCoverageDB()
}

// Get looks up a registered item by its full dotted name.
func (db *CoverageDB) Get(name string) (*CoverItem, error) {
	item, ok := db.items[name]
	if !ok {
		return nil, coverr.Newf(coverr.Registration, "unknown name %q", name)
	}
	return item, nil
}

// Names returns every registered item's full dotted name in sorted order.
func (db *CoverageDB) Names() []string {
	names := make([]string, 0, len(db.items))
	for n := range db.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ensureContainer returns the container for dotted name, creating any
// missing intermediate containers along the way. The returned container is
// shared: registering "a.b.c" then "a.b.d" yields one "a.b" parent.
func (db *CoverageDB) ensureContainer(name string) *CoverItem {
	if name == "" {
		return db.root
	}
	if existing, ok := db.items[name]; ok {
		return existing
	}

	parts := strings.Split(name, ".")
	cur := db.root
	built := ""
	for _, part := range parts {
		if built == "" {
			built = part
		} else {
			built = built + "." + part
		}
		if child, ok := cur.children[part]; ok {
			cur = child
			continue
		}
		child := newContainer(built, cur)
		cur.children[part] = child
		cur.order = append(cur.order, part)
		db.items[built] = child
		cur = child
	}
	return cur
}

// add registers leaf under its full dotted name, creating missing
// containers up the path. Duplicate registration is a Registration error.
func (db *CoverageDB) add(leaf *CoverItem) error {
	if _, exists := db.items[leaf.name]; exists {
		return coverr.Newf(coverr.Registration, "duplicate name %q", leaf.name)
	}

	parts := strings.Split(leaf.name, ".")
	parentName := strings.Join(parts[:len(parts)-1], ".")
	segment := parts[len(parts)-1]

	parent := db.ensureContainer(parentName)
	if parent.kind != KindContainer {
		return coverr.Newf(coverr.Registration, "%q cannot be registered under leaf %q", leaf.name, parent.name)
	}

	parent.children[segment] = leaf
	parent.order = append(parent.order, segment)
	leaf.parent = parent
	db.items[leaf.name] = leaf

	if leaf.kind == KindCross {
		for _, ref := range leaf.crossItems {
			db.crossesByPoint[ref] = append(db.crossesByPoint[ref], leaf)
		}
	}

	return leaf.propagateUp("")
}

// String renders a plain indented-tree summary of the whole database,
// rooted at each top-level name in sorted order.
func (db *CoverageDB) String() string {
	var b strings.Builder
	names := append([]string(nil), db.root.order...)
	sort.Strings(names)
	for _, n := range names {
		b.WriteString(db.root.children[n].String())
	}
	return b.String()
}
