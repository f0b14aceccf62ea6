package progress

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSink_RecordAndLatest(t *testing.T) {
	s := NewSink()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Record("job-1", PhaseDiscovery, StatusStarted, "", now)
	s.Record("job-1", PhaseDiscovery, StatusComplete, "found 12 paths", now.Add(time.Second))

	latest, ok := s.Latest("job-1")
	if !ok {
		t.Fatal("expected a latest event")
	}
	if latest.Phase != PhaseDiscovery || latest.Status != StatusComplete {
		t.Errorf("unexpected latest event: %+v", latest)
	}
	if latest.Message != "found 12 paths" {
		t.Errorf("unexpected message: %q", latest.Message)
	}
}

func TestSink_Latest_UnknownJobReturnsFalse(t *testing.T) {
	s := NewSink()
	_, ok := s.Latest("no-such-job")
	if ok {
		t.Error("expected no event for unknown job")
	}
}

func TestSink_History_PreservesOrder(t *testing.T) {
	s := NewSink()
	now := time.Now()
	s.Record("job-1", PhaseDiscovery, StatusStarted, "", now)
	s.Record("job-1", PhaseSelection, StatusStarted, "", now)
	s.Record("job-1", PhaseCrawling, StatusStarted, "", now)

	hist := s.History("job-1")
	if len(hist) != 3 {
		t.Fatalf("expected 3 events, got %d", len(hist))
	}
	if hist[0].Phase != PhaseDiscovery || hist[1].Phase != PhaseSelection || hist[2].Phase != PhaseCrawling {
		t.Errorf("unexpected order: %+v", hist)
	}
}

func TestSink_History_ReturnsCopyNotAliased(t *testing.T) {
	s := NewSink()
	s.Record("job-1", PhaseDiscovery, StatusStarted, "", time.Now())

	hist := s.History("job-1")
	hist[0].Phase = "tampered"

	fresh := s.History("job-1")
	if fresh[0].Phase == "tampered" {
		t.Error("History should return a defensive copy")
	}
}

func TestSink_ConcurrentRecord(t *testing.T) {
	s := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Record("job-1", PhaseCrawling, StatusStarted, "", time.Now())
		}(i)
	}
	wg.Wait()

	if len(s.History("job-1")) != 50 {
		t.Errorf("expected 50 events, got %d", len(s.History("job-1")))
	}
}

func TestRecordingCallback_AppendsToSink(t *testing.T) {
	s := NewSink()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := RecordingCallback(s, fixedClock(now))

	cb("job-1", PhaseExtraction, "done")

	latest, ok := s.Latest("job-1")
	if !ok {
		t.Fatal("expected event recorded via callback")
	}
	if latest.Phase != PhaseExtraction || latest.Status != StatusComplete || !latest.Timestamp.Equal(now) {
		t.Errorf("unexpected event: %+v", latest)
	}
}
