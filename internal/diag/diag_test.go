package diag_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/fathom-editor/fathom/internal/diag"
)

func TestAppendAndRecords(t *testing.T) {
	log := diag.NewLog(8)

	log.Infof("test", "first")
	log.Warnf("test", "second %d", 2)

	recs := log.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Message != "first" {
		t.Errorf("expected oldest first, got %q", recs[0].Message)
	}
	if recs[1].Message != "second 2" {
		t.Errorf("expected formatted message, got %q", recs[1].Message)
	}
}

func TestRingRotation(t *testing.T) {
	log := diag.NewLog(3)

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		log.Infof("test", "%s", msg)
	}

	recs := log.Records()
	if len(recs) != 3 {
		t.Fatalf("expected capacity 3, got %d", len(recs))
	}
	if recs[0].Message != "c" || recs[2].Message != "e" {
		t.Errorf("expected oldest-first rotation, got %v", recs)
	}
	if log.Total() != 5 {
		t.Errorf("expected total 5, got %d", log.Total())
	}
}

func TestMinLevel(t *testing.T) {
	log := diag.NewLog(8)
	log.SetMinLevel(diag.LevelWarn)

	log.Debugf("test", "dropped")
	log.Errorf("test", "kept")

	recs := log.Records()
	if len(recs) != 1 || recs[0].Message != "kept" {
		t.Fatalf("expected only the error record, got %v", recs)
	}
}

func TestClear(t *testing.T) {
	log := diag.NewLog(4)
	log.Infof("test", "x")
	log.Clear()

	if len(log.Records()) != 0 {
		t.Error("expected no records after clear")
	}
}

func TestConcurrentWriters(t *testing.T) {
	log := diag.NewLog(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Infof("writer", "msg")
			}
		}()
	}
	wg.Wait()

	if log.Total() != 400 {
		t.Errorf("expected 400 total appends, got %d", log.Total())
	}
	if len(log.Records()) != 64 {
		t.Errorf("expected a full ring, got %d", len(log.Records()))
	}
}

func TestRecordString(t *testing.T) {
	log := diag.NewLog(2)
	log.Warnf("dispatch", "no handler")

	s := log.Records()[0].String()
	if !strings.Contains(s, "WARN") || !strings.Contains(s, "[dispatch]") {
		t.Errorf("unexpected format %q", s)
	}
}
