package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestStartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("every once in a while", time.UTC)
	err := sched.Start(context.Background(), func(time.Time) {})
	if err == nil {
		t.Fatal("Start() with bad spec expected error")
	}
}

func TestStartRejectsNilJob(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("@every 1s", time.UTC)
	if err := sched.Start(context.Background(), nil); err == nil {
		t.Fatal("Start() with nil job expected error")
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	sched := NewCronScheduler("@every 1s", time.UTC)
	if err := sched.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestSchedulerFires(t *testing.T) {
	t.Parallel()

	ticks := make(chan time.Time, 4)
	sched := NewCronScheduler("@every 1s", time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx, func(at time.Time) { ticks <- at }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-ticks:
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	drained := len(ticks)
	time.Sleep(1500 * time.Millisecond)
	if extra := len(ticks) - drained; extra > 1 {
		t.Errorf("job fired %d times after Stop()", extra)
	}
}
