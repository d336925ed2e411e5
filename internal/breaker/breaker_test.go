package breaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

var errBoom = errors.New("boom")

func failing() error { return errBoom }
func succeeding() error { return nil }

func TestOpensAfterMaxFailures(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 3, ResetAfter: time.Minute}, testLogger())

	for i := 0; i < 3; i++ {
		if err := b.Execute(failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected wrapped failure, got %v", i, err)
		}
	}

	if b.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %s", b.State())
	}
	if err := b.Execute(succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("open breaker must fail fast, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 2, ResetAfter: time.Minute}, testLogger())

	b.Execute(failing)
	b.Execute(succeeding)
	b.Execute(failing)

	if b.State() != StateClosed {
		t.Errorf("interleaved successes should keep the breaker closed, got %s", b.State())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 1, ResetAfter: 10 * time.Millisecond, MaxProbes: 1}, testLogger())

	b.Execute(failing)
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	time.Sleep(20 * time.Millisecond)

	if err := b.Execute(succeeding); err != nil {
		t.Fatalf("probe call should pass through, got %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("successful probe should close the breaker, got %s", b.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 1, ResetAfter: 10 * time.Millisecond, MaxProbes: 1}, testLogger())

	b.Execute(failing)
	time.Sleep(20 * time.Millisecond)

	if err := b.Execute(failing); !errors.Is(err, errBoom) {
		t.Fatalf("probe should run the call, got %v", err)
	}
	if b.State() != StateOpen {
		t.Errorf("failed probe should reopen the breaker, got %s", b.State())
	}
}

func TestConcurrentExecute(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 5, ResetAfter: 50 * time.Millisecond, MaxProbes: 2}, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if (n+j)%3 == 0 {
					b.Execute(failing)
				} else {
					b.Execute(succeeding)
				}
			}
		}(i)
	}
	wg.Wait()

	// No assertion on the final state; the point is the race detector and
	// that Execute never panics under contention.
	_ = b.State()
}

func TestConfigDefaults(t *testing.T) {
	b := New(Config{}, testLogger())

	if b.name != "unnamed" {
		t.Errorf("expected default name, got %q", b.name)
	}
	if b.maxFailures != 5 {
		t.Errorf("expected default max failures 5, got %d", b.maxFailures)
	}
	if b.resetAfter != 30*time.Second {
		t.Errorf("expected default reset 30s, got %v", b.resetAfter)
	}
	if b.maxProbes != 1 {
		t.Errorf("expected default probe cap 1, got %d", b.maxProbes)
	}
}
