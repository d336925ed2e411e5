package adminflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

type recordingNotifier struct {
	successes []string
	errors    []string
	infos     []string
}

func (r *recordingNotifier) Success(m string) { r.successes = append(r.successes, m) }
func (r *recordingNotifier) Error(m string)   { r.errors = append(r.errors, m) }
func (r *recordingNotifier) Info(m string)    { r.infos = append(r.infos, m) }

func day(n int) time.Time {
	return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC)
}

// orderServer serves the admin order routes against a mutable slice.
func orderServer(t *testing.T, orders *[]models.Order, listCalls, patchCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(listCalls, 1)
		json.NewEncoder(w).Encode(*orders)
	})
	mux.HandleFunc("/api/admin/orders/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(patchCalls, 1)
		var req models.UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad status body: %v", err)
		}
		// Fixtures here keep the mutated order first, so path parsing is
		// not needed.
		(*orders)[0].Status = req.Status
		json.NewEncoder(w).Encode((*orders)[0])
	})
	return httptest.NewServer(mux)
}

func TestRefreshSortsNewestFirst(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Status: models.StatusPending, CreatedAt: day(1)},
		{ID: 3, Status: models.StatusReady, CreatedAt: day(3)},
		{ID: 2, Status: models.StatusReady, CreatedAt: day(2)},
	}
	var listCalls, patchCalls int32
	srv := orderServer(t, &orders, &listCalls, &patchCalls)
	defer srv.Close()

	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), nil, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	got := board.Orders()
	wantIDs := []int64{3, 2, 1}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Errorf("position %d: expected order %d, got %d", i, want, got[i].ID)
		}
	}
}

func TestFilterLeavesFetchedSetIntact(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Status: models.StatusPending, CreatedAt: day(4)},
		{ID: 2, Status: models.StatusReady, CreatedAt: day(3)},
		{ID: 3, Status: models.StatusReady, CreatedAt: day(2)},
		{ID: 4, Status: models.StatusCompleted, CreatedAt: day(1)},
	}
	var listCalls, patchCalls int32
	srv := orderServer(t, &orders, &listCalls, &patchCalls)
	defer srv.Close()

	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), nil, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	board.SetFilter("READY")
	visible := board.Visible()
	if len(visible) != 2 {
		t.Fatalf("expected 2 READY orders, got %d", len(visible))
	}
	for _, o := range visible {
		if o.Status != models.StatusReady {
			t.Errorf("filter leaked order %d with status %s", o.ID, o.Status)
		}
	}
	if len(board.Orders()) != 4 {
		t.Errorf("filtering must not shrink the fetched set")
	}

	board.SetFilter(FilterAll)
	if len(board.Visible()) != 4 {
		t.Errorf("ALL filter should show everything")
	}
}

func TestNextActionPerStatus(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Status: models.StatusPending, CreatedAt: day(2)},
		{ID: 2, Status: models.StatusCompleted, CreatedAt: day(1)},
	}
	var listCalls, patchCalls int32
	srv := orderServer(t, &orders, &listCalls, &patchCalls)
	defer srv.Close()

	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), nil, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	action, ok := board.NextAction(1)
	if !ok || action != "Start Preparing" {
		t.Errorf("PENDING order should offer Start Preparing, got %q (%v)", action, ok)
	}
	if _, ok := board.NextAction(2); ok {
		t.Errorf("COMPLETED order must offer no action")
	}
	if _, ok := board.NextAction(99); ok {
		t.Errorf("unknown order must offer no action")
	}
}

func TestAdvancePatchesAndRefetches(t *testing.T) {
	orders := []models.Order{
		{ID: 5, Status: models.StatusPending, CreatedAt: day(1)},
	}
	var listCalls, patchCalls int32
	srv := orderServer(t, &orders, &listCalls, &patchCalls)
	defer srv.Close()

	n := &recordingNotifier{}
	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), n, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := board.Advance(5); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	if patchCalls != 1 {
		t.Errorf("expected one PATCH, got %d", patchCalls)
	}
	if listCalls != 2 {
		t.Errorf("expected refetch after mutation, got %d list calls", listCalls)
	}
	if got := board.Orders()[0].Status; got != models.StatusPreparing {
		t.Errorf("expected PREPARING after refetch, got %s", got)
	}
	if len(n.successes) != 1 || n.successes[0] != "Order status updated to PREPARING" {
		t.Errorf("unexpected notification: %v", n.successes)
	}
}

func TestAdvanceTerminalOrderRefused(t *testing.T) {
	orders := []models.Order{
		{ID: 5, Status: models.StatusCompleted, CreatedAt: day(1)},
	}
	var listCalls, patchCalls int32
	srv := orderServer(t, &orders, &listCalls, &patchCalls)
	defer srv.Close()

	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), nil, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := board.Advance(5); err == nil {
		t.Fatal("advancing a COMPLETED order must fail")
	}
	if patchCalls != 0 {
		t.Errorf("terminal order must not be patched")
	}
}

func TestAdvanceFailureLeavesListStale(t *testing.T) {
	var listCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		json.NewEncoder(w).Encode([]models.Order{{ID: 5, Status: models.StatusPending, CreatedAt: day(1)}})
	})
	mux.HandleFunc("/api/admin/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse{Message: "Failed to update status"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	n := &recordingNotifier{}
	board := NewOrderBoard(api.NewClient(srv.URL, testLogger()), n, testLogger())
	if err := board.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := board.Advance(5); err == nil {
		t.Fatal("expected advance to fail")
	}

	if got := board.Orders()[0].Status; got != models.StatusPending {
		t.Errorf("failed mutation must leave the displayed status stale, got %s", got)
	}
	if listCalls != 1 {
		t.Errorf("no refetch on failure, got %d list calls", listCalls)
	}
	if len(n.errors) != 1 || n.errors[0] != "Failed to update status" {
		t.Errorf("expected server message surfaced, got %v", n.errors)
	}
}
