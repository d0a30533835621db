package feedsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var ErrNothingToCommit = errors.New("feedsync: nothing to commit")

// Publisher makes an exported feed file visible to dashboard users.
type Publisher interface {
	Publish(ctx context.Context, path string, count int, at time.Time) error
}

// CommandRunner runs one external command in dir and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

type execRunner struct{}

func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	text := strings.TrimSpace(out.String())
	if err != nil && text != "" {
		return text, fmt.Errorf("%w: %s", err, trimOutput(text))
	}
	return text, err
}

func trimOutput(in string) string {
	if len(in) > 512 {
		return in[:512]
	}
	return in
}

// GitPublisher commits the feed file and pushes it to the configured remote.
type GitPublisher struct {
	RepoDir string
	Remote  string
	Branch  string
	Binary  string
	runner  CommandRunner
}

func NewGitPublisher(repoDir, remote, branch string, runner CommandRunner) *GitPublisher {
	if runner == nil {
		runner = NewExecRunner()
	}
	if repoDir == "" {
		repoDir = "."
	}
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "main"
	}
	return &GitPublisher{RepoDir: repoDir, Remote: remote, Branch: branch, Binary: "git", runner: runner}
}

func CommitMessage(count int, at time.Time) string {
	return fmt.Sprintf("auto-sync: %d registros - %s", count, at.Format("02/01/2006 15:04:05"))
}

func (p *GitPublisher) Publish(ctx context.Context, path string, count int, at time.Time) error {
	rel := path
	if abs, err := filepath.Abs(path); err == nil {
		if repo, err := filepath.Abs(p.RepoDir); err == nil {
			if r, err := filepath.Rel(repo, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	if _, err := p.git(ctx, "add", rel); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	out, err := p.git(ctx, "commit", "-m", CommitMessage(count, at))
	if err != nil {
		if nothingToCommit(out) || nothingToCommit(err.Error()) {
			return ErrNothingToCommit
		}
		return fmt.Errorf("git commit: %w", err)
	}
	if _, err := p.git(ctx, "push", p.Remote, p.Branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func (p *GitPublisher) git(ctx context.Context, args ...string) (string, error) {
	bin := strings.TrimSpace(p.Binary)
	if bin == "" {
		bin = "git"
	}
	return p.runner.Run(ctx, p.RepoDir, bin, args...)
}

func nothingToCommit(out string) bool {
	out = strings.ToLower(out)
	return strings.Contains(out, "nothing to commit") || strings.Contains(out, "nothing added to commit")
}

// NopPublisher leaves the exported file where it is.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, int, time.Time) error { return nil }
