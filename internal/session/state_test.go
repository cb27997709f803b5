package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func testState(t *testing.T) *AppState {
	t.Helper()
	return NewAppState(filepath.Join(t.TempDir(), "state.json"))
}

func TestAddRemoveProject(t *testing.T) {
	state := testState(t)
	project := NewProject("test", "/tmp/test", "main")

	state.AddProject(project)
	if state.ProjectCount() != 1 {
		t.Fatalf("Expected 1 project, got %d", state.ProjectCount())
	}

	removed := state.RemoveProject(project.ID)
	if removed == nil {
		t.Fatal("Expected removed project to be returned")
	}
	if state.ProjectCount() != 0 {
		t.Errorf("Expected 0 projects, got %d", state.ProjectCount())
	}
}

func TestAddRemoveSessionLinksParent(t *testing.T) {
	state := testState(t)
	project := NewProject("test", "/tmp/test", "main")
	state.AddProject(project)

	sess := NewSession(project.ID, "Test Session", "test-session", "/tmp/wt", "claude")
	state.AddSession(sess)

	if state.SessionCount() != 1 {
		t.Fatalf("Expected 1 session, got %d", state.SessionCount())
	}

	got := state.GetProject(project.ID)
	if len(got.Worktrees) != 1 || got.Worktrees[0] != sess.ID {
		t.Error("Expected session linked to parent project")
	}

	// Every child references a session whose project_id matches.
	for _, id := range got.Worktrees {
		child := state.GetSession(id)
		if child == nil || child.ProjectID != project.ID {
			t.Error("Child list references session with mismatched project")
		}
	}

	state.RemoveSession(sess.ID)
	if state.SessionCount() != 0 {
		t.Errorf("Expected 0 sessions, got %d", state.SessionCount())
	}
	got = state.GetProject(project.ID)
	if len(got.Worktrees) != 0 {
		t.Error("Expected session unlinked from parent project")
	}
}

func TestRemoveProjectCascades(t *testing.T) {
	state := testState(t)
	project := NewProject("test", "/tmp/test", "main")
	state.AddProject(project)

	for i := 0; i < 3; i++ {
		state.AddSession(NewSession(project.ID, "s", "s", "/tmp/wt", "claude"))
	}
	if state.SessionCount() != 3 {
		t.Fatalf("Expected 3 sessions, got %d", state.SessionCount())
	}

	state.RemoveProject(project.ID)
	if state.SessionCount() != 0 {
		t.Errorf("Expected cascade to remove sessions, got %d", state.SessionCount())
	}
}

func TestActiveSessions(t *testing.T) {
	state := testState(t)
	project := NewProject("test", "/tmp/test", "main")
	state.AddProject(project)

	running := NewSession(project.ID, "running", "running", "/tmp/a", "claude")
	paused := NewSession(project.ID, "paused", "paused", "/tmp/b", "claude")
	paused.Status = StatusPaused
	stopped := NewSession(project.ID, "stopped", "stopped", "/tmp/c", "claude")
	stopped.Status = StatusStopped

	state.AddSession(running)
	state.AddSession(paused)
	state.AddSession(stopped)

	active := state.ActiveSessions()
	if len(active) != 2 {
		t.Errorf("Expected 2 active sessions, got %d", len(active))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := NewAppState(path)

	project := NewProject("roundtrip", "/tmp/repo", "main")
	state.AddProject(project)
	sess := NewSession(project.ID, "Feature Auth", "feature-auth", "/tmp/wt", "claude")
	sess.BaseCommit = "abc123"
	state.AddSession(sess)
	state.MarkHelpSeen()
	state.SetSelection(project.ID, sess.ID)

	if err := state.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadAppState(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ProjectCount() != 1 || loaded.SessionCount() != 1 {
		t.Fatalf("Expected 1 project and 1 session, got %d/%d",
			loaded.ProjectCount(), loaded.SessionCount())
	}

	gotProject := loaded.GetProject(project.ID)
	if gotProject == nil || gotProject.Name != "roundtrip" || gotProject.MainBranch != "main" {
		t.Errorf("Project did not round-trip: %+v", gotProject)
	}

	gotSession := loaded.GetSession(sess.ID)
	if gotSession == nil {
		t.Fatal("Session did not round-trip")
	}
	if gotSession.Title != "Feature Auth" ||
		gotSession.Branch != "feature-auth" ||
		gotSession.TmuxSessionName != sess.TmuxSessionName ||
		gotSession.BaseCommit != "abc123" ||
		gotSession.Status != StatusRunning {
		t.Errorf("Session fields did not round-trip: %+v", gotSession)
	}

	if !loaded.SeenHelp {
		t.Error("seen_help did not round-trip")
	}
	if loaded.LastSelectedProject != project.ID || loaded.LastSelectedSession != sess.ID {
		t.Error("selection did not round-trip")
	}
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := NewAppState(path)
	state.AddProject(NewProject("p", "/tmp/p", "main"))

	if err := state.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be renamed away")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read state file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("State file is not valid JSON: %v", err)
	}
	for _, key := range []string{"projects", "sessions", "seen_help", "last_selected_project", "last_selected_session", "version"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("State file missing key %q", key)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	loaded, err := LoadAppState(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Expected empty state for missing file, got error: %v", err)
	}
	if loaded.ProjectCount() != 0 || loaded.SessionCount() != 0 {
		t.Error("Expected empty state")
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{"projects":{},"sessions":{},"version":"9.9.9","some_future_key":42}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadAppState(path); err != nil {
		t.Errorf("Expected unknown keys to be ignored, got %v", err)
	}
}

func TestUpdateSession(t *testing.T) {
	state := testState(t)
	project := NewProject("p", "/tmp/p", "main")
	state.AddProject(project)
	sess := NewSession(project.ID, "t", "t", "/tmp/wt", "claude")
	state.AddSession(sess)

	ok := state.UpdateSession(sess.ID, func(s *Session) {
		s.SetStatus(StatusPaused)
	})
	if !ok {
		t.Fatal("Expected update to find session")
	}
	if got := state.GetSession(sess.ID); got.Status != StatusPaused {
		t.Errorf("Expected paused, got %s", got.Status)
	}

	if state.UpdateSession("missing", func(s *Session) {}) {
		t.Error("Expected update of unknown session to report false")
	}
}
