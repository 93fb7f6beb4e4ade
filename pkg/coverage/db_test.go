package coverage

import "testing"

func TestDBLazyContainersAreShared(t *testing.T) {
	db := newTestDB()
	NewCoverPoint(db, "a.b.c", []interface{}{0}, nil)
	NewCoverPoint(db, "a.b.d", []interface{}{0}, nil)

	ab1, err := db.Get("a.b")
	if err != nil {
		t.Fatalf("get a.b: %v", err)
	}
	c, err := db.Get("a.b.c")
	if err != nil {
		t.Fatalf("get a.b.c: %v", err)
	}
	d, err := db.Get("a.b.d")
	if err != nil {
		t.Fatalf("get a.b.d: %v", err)
	}
	if c.parent != ab1 || d.parent != ab1 {
		t.Fatal("a.b.c and a.b.d should share a single a.b container parent")
	}
	a, err := db.Get("a")
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	if ab1.parent != a {
		t.Fatal("a.b's parent should be a")
	}
}

func TestDBUnknownNameErrors(t *testing.T) {
	db := newTestDB()
	if _, err := db.Get("nowhere"); err == nil {
		t.Fatal("expected unknown name to error")
	}
}

func TestDBNamesSortedOrder(t *testing.T) {
	db := newTestDB()
	NewCoverPoint(db, "z.p", []interface{}{0}, nil)
	NewCoverPoint(db, "a.p", []interface{}{0}, nil)
	names := db.Names()
	prev := ""
	for _, n := range names {
		if n < prev {
			t.Fatalf("Names() not sorted: %v", names)
		}
		prev = n
	}
}

func TestDBCannotRegisterUnderLeaf(t *testing.T) {
	db := newTestDB()
	NewCoverPoint(db, "leaf", []interface{}{0}, nil)
	_, err := NewCoverPoint(db, "leaf.child", []interface{}{0}, nil)
	if err == nil {
		t.Fatal("expected registration under an existing leaf to error")
	}
}

func TestResetDBIsolatesTests(t *testing.T) {
	db1 := newTestDB()
	NewCoverPoint(db1, "x", []interface{}{0}, nil)
	db2 := newTestDB()
	if _, err := db2.Get("x"); err == nil {
		t.Fatal("ResetDB should have cleared the previous singleton's state")
	}
}
