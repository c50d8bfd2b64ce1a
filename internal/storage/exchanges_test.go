package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestExchangeLog(t *testing.T) *ExchangeLog {
	t.Helper()
	log, err := NewExchangeLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewExchangeLog: %v", err)
	}
	return log
}

func TestExchangeAppendAndList(t *testing.T) {
	log := newTestExchangeLog(t)

	for i := 0; i < 3; i++ {
		err := log.Append(Exchange{
			ID:       fmt.Sprintf("ex-%d", i),
			SourceID: "src",
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
			Method:   "generative-fallback",
			AskedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	exchanges, err := log.ListFor("src")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(exchanges) != 3 {
		t.Fatalf("len = %d, want 3", len(exchanges))
	}
	// Append order preserved.
	for i, e := range exchanges {
		if e.Question != fmt.Sprintf("q%d", i) {
			t.Errorf("exchange %d = %q, want q%d", i, e.Question, i)
		}
	}
}

func TestExchangeListForEmpty(t *testing.T) {
	log := newTestExchangeLog(t)

	exchanges, err := log.ListFor("never-asked")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(exchanges) != 0 {
		t.Errorf("len = %d, want 0", len(exchanges))
	}
}

func TestExchangeRemove(t *testing.T) {
	log := newTestExchangeLog(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := log.Append(Exchange{ID: id, SourceID: "src", Question: id}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := log.Remove("src", "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	exchanges, err := log.ListFor("src")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(exchanges) != 2 || exchanges[0].ID != "a" || exchanges[1].ID != "c" {
		t.Errorf("remaining = %+v, want [a c]", exchanges)
	}
}

func TestExchangeRemoveUnknown(t *testing.T) {
	log := newTestExchangeLog(t)

	if err := log.Append(Exchange{ID: "a", SourceID: "src"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := log.Remove("src", "zzz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestExchangeDeleteForIdempotent(t *testing.T) {
	log := newTestExchangeLog(t)

	if err := log.Append(Exchange{ID: "a", SourceID: "src"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := log.DeleteFor("src"); err != nil {
		t.Fatalf("DeleteFor: %v", err)
	}
	if err := log.DeleteFor("src"); err != nil {
		t.Errorf("second DeleteFor: %v, want success", err)
	}

	exchanges, err := log.ListFor("src")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(exchanges) != 0 {
		t.Errorf("len = %d after delete, want 0", len(exchanges))
	}
}
