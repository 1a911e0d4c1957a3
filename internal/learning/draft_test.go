package learning

import "testing"

func TestParseDraftBothMarkers(t *testing.T) {
	title, body := ParseDraft("Title: VPN Setup\n\nBody: Do X then Y.")
	if title != "VPN Setup" {
		t.Errorf("title = %q", title)
	}
	if body != "Do X then Y." {
		t.Errorf("body = %q", body)
	}
}

func TestParseDraftCaseInsensitiveMarkers(t *testing.T) {
	title, body := ParseDraft("TITLE: Printer Fix\nbody: Restart the spooler.")
	if title != "Printer Fix" {
		t.Errorf("title = %q", title)
	}
	if body != "Restart the spooler." {
		t.Errorf("body = %q", body)
	}
}

func TestParseDraftNoMarkers(t *testing.T) {
	draft := "Just some freeform resolution notes\nwith two lines."
	title, body := ParseDraft(draft)
	if title != PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", title)
	}
	if body != draft {
		t.Errorf("body should be the full draft verbatim, got %q", body)
	}
}

func TestParseDraftTitleOnly(t *testing.T) {
	draft := "Title: Mailbox Repair\nThen do the usual steps."
	title, body := ParseDraft(draft)
	if title != "Mailbox Repair" {
		t.Errorf("title = %q", title)
	}
	if body != draft {
		t.Errorf("missing body marker keeps whole draft as body, got %q", body)
	}
}

func TestParseDraftBodyOnly(t *testing.T) {
	title, body := ParseDraft("Body: reset the cache")
	if title != PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", title)
	}
	if body != "reset the cache" {
		t.Errorf("body = %q", body)
	}
}

func TestParseDraftMultilineBody(t *testing.T) {
	_, body := ParseDraft("Title: T\n\nBody: line one\nline two\nline three")
	if body != "line one\nline two\nline three" {
		t.Errorf("body should keep everything after the marker, got %q", body)
	}
}
