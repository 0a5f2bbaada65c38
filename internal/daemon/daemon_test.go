package daemon

import (
	"context"
	"testing"

	"wayfinder/internal/logging"
	"wayfinder/internal/queue"
	"wayfinder/internal/stage"
	"wayfinder/internal/testsupport"
	"wayfinder/internal/workflow"
)

type idleHandler struct{}

func (idleHandler) Prepare(context.Context, *queue.Job) error { return nil }
func (idleHandler) Execute(context.Context, *queue.Job) error { return nil }
func (idleHandler) HealthCheck(context.Context) stage.Health  { return stage.Healthy("idle") }

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(workflow.StageSet{Ingester: idleHandler{}})
	d, err := New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)
	if d.Running() {
		t.Fatalf("daemon should not run before Start")
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatalf("daemon should report running")
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatalf("second Start should fail")
	}

	status := d.Status(context.Background())
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("status = %+v", status)
	}
	if status.LockFilePath == "" || status.QueueDBPath == "" {
		t.Fatalf("paths missing from status: %+v", status)
	}

	d.Stop()
	if d.Running() {
		t.Fatalf("daemon should stop")
	}
	// Restart works after a clean stop.
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	d.Stop()
}

func TestDaemonNewRequiresDependencies(t *testing.T) {
	if _, err := New(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}
