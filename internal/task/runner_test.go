package task

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testRunner() Runner {
	return Runner{Timeout: 5 * time.Second, MaxOutput: 1 << 20}
}

func TestRunCapturesOutput(t *testing.T) {
	stdout, stderr, err := testRunner().Run(context.Background(), "sh", "-c", "echo out; echo err 1>&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "out" {
		t.Errorf("stdout = %q, want %q", stdout, "out")
	}
	if stderr != "err" {
		t.Errorf("stderr = %q, want %q", stderr, "err")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	stdout, _, err := testRunner().Run(context.Background(), "sh", "-c", "echo partial; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if stdout != "partial" {
		t.Errorf("stdout = %q, want captured output despite failure", stdout)
	}
}

func TestRunTimeout(t *testing.T) {
	r := Runner{Timeout: 50 * time.Millisecond, MaxOutput: 1 << 20}
	_, _, err := r.Run(context.Background(), "sh", "-c", "sleep 5")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
}

func TestRunOutputOverflow(t *testing.T) {
	r := Runner{Timeout: 5 * time.Second, MaxOutput: 64}
	stdout, _, err := r.Run(context.Background(), "sh", "-c", "head -c 4096 /dev/zero | tr '\\0' 'a'")
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if len(stdout) > 64 {
		t.Errorf("stdout length = %d, want capped at 64", len(stdout))
	}
}

func TestRunDefaultsApplied(t *testing.T) {
	var r Runner
	stdout, _, err := r.Run(context.Background(), "sh", "-c", "echo ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "ok" {
		t.Errorf("stdout = %q, want %q", stdout, "ok")
	}
}
