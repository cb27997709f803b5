package git

import (
	"testing"
)

func TestParsePRJSON(t *testing.T) {
	json := `[{"number":42,"url":"https://github.com/owner/repo/pull/42"}]`

	pr := parsePRJSON([]byte(json))
	if pr == nil {
		t.Fatal("Expected a PR")
	}
	if pr.Number != 42 {
		t.Errorf("Expected number 42, got %d", pr.Number)
	}
	if pr.URL != "https://github.com/owner/repo/pull/42" {
		t.Errorf("Unexpected URL: %q", pr.URL)
	}
}

func TestParsePRJSONEmpty(t *testing.T) {
	if pr := parsePRJSON([]byte("[]")); pr != nil {
		t.Errorf("Expected nil for empty array, got %+v", pr)
	}
	if pr := parsePRJSON([]byte("")); pr != nil {
		t.Errorf("Expected nil for empty input, got %+v", pr)
	}
	if pr := parsePRJSON([]byte("not json")); pr != nil {
		t.Errorf("Expected nil for invalid input, got %+v", pr)
	}
}
