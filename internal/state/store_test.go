package state

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/superplanehq/superplane-desktop/internal/launcher"
)

func TestStore_ReporterUpdatesSnapshot(t *testing.T) {
	var s Store

	before := time.Now()
	s.Phase(launcher.PhaseCheckingRuntime)
	s.Status("Checking Docker…")
	s.Log("$ docker pull image\nDigest: sha256:0123\n\n")
	s.Phase(launcher.PhaseFailed)
	s.Error("Failed: docker pull exited with code 1")

	snap := s.Snapshot()
	if snap.Phase != launcher.PhaseFailed || !snap.Failed() {
		t.Fatalf("Phase = %v, want failed", snap.Phase)
	}
	if snap.Status != "Checking Docker…" {
		t.Fatalf("Status = %q", snap.Status)
	}
	wantLogs := []string{"$ docker pull image", "Digest: sha256:0123"}
	if !reflect.DeepEqual(snap.Logs, wantLogs) {
		t.Fatalf("Logs = %q, want %q", snap.Logs, wantLogs)
	}
	if snap.Error != "Failed: docker pull exited with code 1" {
		t.Fatalf("Error = %q", snap.Error)
	}
	if snap.Attempts != 1 {
		t.Fatalf("Attempts = %d, want 1", snap.Attempts)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
}

func TestStore_NewAttemptClearsError(t *testing.T) {
	var s Store

	s.Phase(launcher.PhaseCheckingRuntime)
	s.Error("Docker is not running. Please start Docker and retry.")
	s.Phase(launcher.PhaseFailed)
	s.Log("kept across attempts")

	s.Phase(launcher.PhaseCheckingRuntime)
	snap := s.Snapshot()
	if snap.Error != "" {
		t.Fatalf("Error = %q, want cleared on new attempt", snap.Error)
	}
	if snap.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", snap.Attempts)
	}
	if len(snap.Logs) != 1 {
		t.Fatalf("Logs = %q, want log history kept", snap.Logs)
	}
}

func TestStore_SnapshotClonesLogs(t *testing.T) {
	var s Store
	s.Log("one\ntwo")

	snap := s.Snapshot()
	snap.Logs[0] = "mutated"

	if got := s.Snapshot().Logs[0]; got != "one" {
		t.Fatalf("Snapshot should clone logs; got %q want one", got)
	}
}

func TestStore_LogLimit(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Log(fmt.Sprintf("line %d", i))
	}

	snap := s.Snapshot()
	want := []string{"line 2", "line 3", "line 4"}
	if !reflect.DeepEqual(snap.Logs, want) {
		t.Fatalf("Logs = %q, want %q", snap.Logs, want)
	}
	if snap.LogTotal != 5 {
		t.Fatalf("LogTotal = %d, want 5", snap.LogTotal)
	}

	s.ClearLogs()
	if got := s.Snapshot().Logs; len(got) != 0 {
		t.Fatalf("Logs after ClearLogs = %q, want empty", got)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store offline: %+v", snap)
	}

	s.RecordProbe(200, nil)
	s.RecordProbe(0, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, IsOffline = %v after one failure", snap.ConsecutiveFailures, snap.IsOffline())
	}
	if snap.LastProbe != 200 {
		t.Fatalf("LastProbe = %d, want last good status kept", snap.LastProbe)
	}

	origErr := errors.New("fail 2")
	s.RecordProbe(0, origErr)
	snap = s.Snapshot()
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}
	if snap.LastProbeError == nil || snap.LastProbeError.Error() != "fail 2" {
		t.Fatalf("LastProbeError = %v, want fail 2", snap.LastProbeError)
	}
	if reflect.ValueOf(snap.LastProbeError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.RecordProbe(204, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.LastProbeError != nil {
		t.Fatalf("success did not reset health: %+v", snap)
	}
}

func TestStore_AppURL(t *testing.T) {
	var s Store
	s.Phase(launcher.PhaseCheckingRuntime)
	s.SetAppURL("http://127.0.0.1:3000")
	if got := s.Snapshot().AppURL; got != "http://127.0.0.1:3000" {
		t.Fatalf("AppURL = %q", got)
	}
	s.Phase(launcher.PhaseCheckingRuntime)
	if got := s.Snapshot().AppURL; got != "" {
		t.Fatalf("AppURL = %q, want cleared on retry", got)
	}
}

func TestStore_ConcurrentReporters(t *testing.T) {
	s := NewStore(1000)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Log(fmt.Sprintf("worker %d line %d", w, i))
				s.Status("busy")
				_ = s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	if got := s.Snapshot().LogTotal; got != 200 {
		t.Fatalf("LogTotal = %d, want 200", got)
	}
}
