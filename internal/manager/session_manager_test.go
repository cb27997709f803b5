package manager

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"claude-commander/internal/config"
	"claude-commander/internal/session"
)

// initTestRepo creates a repository with a single commit on main.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial commit")

	return dir
}

func testManager(t *testing.T) *SessionManager {
	t.Helper()
	cfg := config.Default()
	cfg.WorktreesDir = filepath.Join(t.TempDir(), "worktrees")

	statePath := filepath.Join(t.TempDir(), "state.json")
	state, err := session.LoadAppState(statePath)
	if err != nil {
		t.Fatal(err)
	}
	return NewSessionManager(cfg, state, nil)
}

func TestAddProjectDetectsMainBranch(t *testing.T) {
	repoDir := initTestRepo(t)
	m := testManager(t)

	projectID, err := m.AddProject(context.Background(), repoDir)
	if err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	project := m.State().GetProject(projectID)
	if project == nil {
		t.Fatal("Project missing from store")
	}
	if project.MainBranch != "main" {
		t.Errorf("Expected main branch, got %q", project.MainBranch)
	}
	if project.Name != filepath.Base(repoDir) {
		t.Errorf("Expected repo dir name, got %q", project.Name)
	}
	if m.State().ProjectCount() != 1 {
		t.Errorf("Expected 1 project, got %d", m.State().ProjectCount())
	}
}

func TestAddProjectRejectsNonRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	m := testManager(t)

	if _, err := m.AddProject(context.Background(), t.TempDir()); err == nil {
		t.Error("Expected error for non-repository path")
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	m := testManager(t)
	project := session.NewProject("p", "/tmp/p", "main")
	m.State().AddProject(project)
	sess := session.NewSession(project.ID, "t", "t", "/tmp/wt", "claude")
	m.State().AddSession(sess)

	if err := m.PauseSession(sess.ID); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if got := m.State().GetSession(sess.ID); got.Status != session.StatusPaused {
		t.Errorf("Expected paused, got %s", got.Status)
	}

	// Pausing a paused session is illegal.
	if err := m.PauseSession(sess.ID); err == nil {
		t.Error("Expected invalid-state error for double pause")
	}

	// Resuming a stopped session is illegal.
	m.State().UpdateSession(sess.ID, func(s *session.Session) {
		s.SetStatus(session.StatusStopped)
	})
	if err := m.ResumeSession(context.Background(), sess.ID); err == nil {
		t.Error("Expected invalid-state error for resume from stopped")
	}
}

func TestCreateSessionUnknownProject(t *testing.T) {
	m := testManager(t)

	_, err := m.CreateSession(context.Background(), session.NewProjectID(), "title", "")
	if err == nil {
		t.Error("Expected project-not-found error")
	}
}

func TestCreateSessionRejectsEmptyTitle(t *testing.T) {
	repoDir := initTestRepo(t)
	m := testManager(t)

	projectID, err := m.AddProject(context.Background(), repoDir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.CreateSession(context.Background(), projectID, "---", ""); err == nil {
		t.Error("Expected invalid-name error for title that sanitises to nothing")
	}
}

func TestKillThenDeleteRemovesAllReferences(t *testing.T) {
	m := testManager(t)
	project := session.NewProject("p", "/tmp/p", "main")
	m.State().AddProject(project)
	sess := session.NewSession(project.ID, "t", "t", "/tmp/wt", "claude")
	m.State().AddSession(sess)

	// The tmux kill and worktree removal are best-effort; neither exists
	// here and the operation must still stop the session.
	if err := m.KillSession(context.Background(), sess.ID, true); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	if got := m.State().GetSession(sess.ID); got.Status != session.StatusStopped {
		t.Errorf("Expected stopped, got %s", got.Status)
	}

	if err := m.DeleteSession(context.Background(), sess.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if m.State().GetSession(sess.ID) != nil {
		t.Error("Expected session removed from store")
	}
	if got := m.State().GetProject(project.ID); len(got.Worktrees) != 0 {
		t.Error("Expected no child references left")
	}
}

func TestSendInputRequiresActiveSession(t *testing.T) {
	m := testManager(t)
	project := session.NewProject("p", "/tmp/p", "main")
	m.State().AddProject(project)

	if err := m.SendInput(session.NewSessionID(), "ls"); err == nil {
		t.Error("Expected not-found error for unknown session")
	}

	stopped := session.NewSession(project.ID, "t", "t", "/tmp/wt", "claude")
	stopped.Status = session.StatusStopped
	m.State().AddSession(stopped)
	if err := m.SendInput(stopped.ID, "ls"); err == nil {
		t.Error("Expected invalid-state error for stopped session")
	}

	running := session.NewSession(project.ID, "r", "r", "/tmp/wt2", "claude")
	m.State().AddSession(running)
	if err := m.SendInput(running.ID, "ls"); err != nil {
		t.Errorf("Expected queued input for running session, got %v", err)
	}
}

func TestAttachTargetInvalidState(t *testing.T) {
	m := testManager(t)
	project := session.NewProject("p", "/tmp/p", "main")
	m.State().AddProject(project)
	sess := session.NewSession(project.ID, "t", "t", "/tmp/wt", "claude")
	sess.Status = session.StatusStopped
	m.State().AddSession(sess)

	if _, err := m.AttachTarget(context.Background(), sess.ID); err == nil {
		t.Error("Expected invalid-state error for stopped session")
	}
}
