package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type testComponent struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (c *testComponent) Start(context.Context) error {
	if c.events != nil {
		*c.events = append(*c.events, "start:"+c.name)
	}
	return c.startErr
}

func (c *testComponent) Stop(context.Context) error {
	if c.events != nil {
		*c.events = append(*c.events, "stop:"+c.name)
	}
	return c.stopErr
}

func TestRuntimeStartStopOrder(t *testing.T) {
	t.Parallel()

	events := make([]string, 0, 6)
	runtime := NewRuntime()
	runtime.Register("ledger", &testComponent{name: "ledger", events: &events})
	runtime.Register("worker", &testComponent{name: "worker", events: &events})
	runtime.Register("httpapi", &testComponent{name: "httpapi", events: &events})

	if err := runtime.Start(context.Background()); err != nil {
		t.Fatalf("start runtime: %v", err)
	}
	if err := runtime.Stop(context.Background()); err != nil {
		t.Fatalf("stop runtime: %v", err)
	}

	expected := []string{
		"start:ledger",
		"start:worker",
		"start:httpapi",
		"stop:httpapi",
		"stop:worker",
		"stop:ledger",
	}
	if !reflect.DeepEqual(events, expected) {
		t.Errorf("events = %v, want %v", events, expected)
	}
}

func TestRuntimeStartFailureRollsBack(t *testing.T) {
	t.Parallel()

	events := make([]string, 0, 4)
	runtime := NewRuntime()
	runtime.Register("ledger", &testComponent{name: "ledger", events: &events})
	runtime.Register("broken", &testComponent{name: "broken", startErr: errors.New("boom"), events: &events})
	runtime.Register("httpapi", &testComponent{name: "httpapi", events: &events})

	err := runtime.Start(context.Background())
	if err == nil {
		t.Fatal("expected start error")
	}

	expected := []string{
		"start:ledger",
		"start:broken",
		"stop:ledger",
	}
	if !reflect.DeepEqual(events, expected) {
		t.Errorf("events = %v, want %v", events, expected)
	}
}

func TestRuntimeStopCollectsErrors(t *testing.T) {
	t.Parallel()

	runtime := NewRuntime()
	runtime.Register("one", &testComponent{name: "one", stopErr: errors.New("first")})
	runtime.Register("two", &testComponent{name: "two", stopErr: errors.New("second")})

	if err := runtime.Start(context.Background()); err != nil {
		t.Fatalf("start runtime: %v", err)
	}
	err := runtime.Stop(context.Background())
	if err == nil {
		t.Fatal("expected stop error")
	}
	for _, want := range []string{"first", "second"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}
