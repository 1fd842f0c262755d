package correct

import "testing"

func TestApplySequentialRules(t *testing.T) {
	// The second rule only matches the first rule's output, so this fails if
	// rules are applied against the original text independently.
	c := New([]Rule{
		{Pattern: "foo", Replacement: "bar"},
		{Pattern: "barbar", Replacement: "baz"},
	}, nil)

	if got := c.Apply("foobar"); got != "baz" {
		t.Fatalf("expected baz, got %q", got)
	}
}

func TestApplyCaseInsensitive(t *testing.T) {
	c := New([]Rule{
		{Pattern: "N8n|N 8 n", Replacement: "n8n"},
	}, nil)

	if got := c.Apply("  n 8 n 測試 "); got != "n8n 測試" {
		t.Fatalf("expected %q, got %q", "n8n 測試", got)
	}
	if got := c.Apply("N8N works"); got != "n8n works" {
		t.Fatalf("expected %q, got %q", "n8n works", got)
	}
}

func TestApplyCaptureGroups(t *testing.T) {
	c := New([]Rule{
		{Pattern: `(\d+) percent`, Replacement: "$1%"},
	}, nil)

	if got := c.Apply("50 percent done"); got != "50% done" {
		t.Fatalf("expected %q, got %q", "50% done", got)
	}
}

func TestMalformedRuleSkipped(t *testing.T) {
	c := New([]Rule{
		{Pattern: "[unclosed", Replacement: "x"},
		{Pattern: "good", Replacement: "fine"},
	}, nil)

	if c.Len() != 1 {
		t.Fatalf("expected 1 surviving rule, got %d", c.Len())
	}
	if got := c.Apply("good morning"); got != "fine morning" {
		t.Fatalf("expected %q, got %q", "fine morning", got)
	}
}

func TestApplyNoRulesTrimsOnly(t *testing.T) {
	c := New(nil, nil)
	if got := c.Apply("\t hello \n"); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
	if got := c.Apply("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
