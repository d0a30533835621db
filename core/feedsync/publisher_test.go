package feedsync

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type call struct {
	dir  string
	args []string
}

type fakeRunner struct {
	calls []call
	fail  map[string]struct {
		out string
		err error
	}
}

func (r *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	r.calls = append(r.calls, call{dir: dir, args: append([]string{name}, args...)})
	if res, ok := r.fail[args[0]]; ok {
		return res.out, res.err
	}
	return "", nil
}

func (r *fakeRunner) commands() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, strings.Join(c.args, " "))
	}
	return out
}

func TestGitPublisherRunsAddCommitPush(t *testing.T) {
	repo := t.TempDir()
	runner := &fakeRunner{}
	p := NewGitPublisher(repo, "", "", runner)
	at := time.Date(2025, 7, 1, 14, 5, 9, 0, time.UTC)
	if err := p.Publish(context.Background(), filepath.Join(repo, "data.json"), 42, at); err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := []string{
		"git add data.json",
		"git commit -m auto-sync: 42 registros - 01/07/2025 14:05:09",
		"git push origin main",
	}
	got := runner.commands()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected commands:\n%s", strings.Join(got, "\n"))
	}
	for _, c := range runner.calls {
		if c.dir != repo {
			t.Fatalf("command ran outside repo: %s", c.dir)
		}
	}
}

func TestGitPublisherNothingToCommit(t *testing.T) {
	runner := &fakeRunner{fail: map[string]struct {
		out string
		err error
	}{
		"commit": {out: "On branch main\nnothing to commit, working tree clean", err: errors.New("exit status 1")},
	}}
	p := NewGitPublisher(t.TempDir(), "origin", "main", runner)
	err := p.Publish(context.Background(), "data.json", 3, time.Now())
	if !errors.Is(err, ErrNothingToCommit) {
		t.Fatalf("expected ErrNothingToCommit, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("push must not run after an empty commit")
	}
}

func TestGitPublisherPushFailure(t *testing.T) {
	runner := &fakeRunner{fail: map[string]struct {
		out string
		err error
	}{
		"push": {err: errors.New("remote rejected")},
	}}
	p := NewGitPublisher(t.TempDir(), "origin", "main", runner)
	err := p.Publish(context.Background(), "data.json", 3, time.Now())
	if err == nil || errors.Is(err, ErrNothingToCommit) || !strings.Contains(err.Error(), "git push") {
		t.Fatalf("expected push error, got %v", err)
	}
}
