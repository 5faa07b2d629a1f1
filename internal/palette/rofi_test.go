package palette

import (
	"strings"
	"testing"
)

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)

	out := b.formatItem(Item{
		Label:    "Header",
		IsHeader: true,
		Icon:     "security-high",
		Meta:     "meta",
		IsActive: true,
		IsUrgent: true,
	})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue") {
		t.Fatalf("expected nonselectable property, got %q", out)
	}
	if strings.Contains(out, "\x00icon\x1f") {
		t.Fatalf("expected icon attribute to be after the first NUL and delimited by \\x1f, got %q", out)
	}
	if !strings.Contains(out, "icon\x1fsecurity-high") || !strings.Contains(out, "meta\x1fmeta") {
		t.Fatalf("expected icon/meta attributes, got %q", out)
	}
}

func TestRofiFormatItem_DimDivider(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)

	out := b.formatItem(Item{
		Label:     "────────",
		IsDivider: true,
	})

	if !strings.Contains(out, "<span foreground='#666666'>") {
		t.Fatalf("expected dim span for divider, got %q", out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue") {
		t.Fatalf("expected nonselectable property for divider, got %q", out)
	}
}

func TestRofiFormatItem_BoldHeader(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)

	out := b.formatItem(Item{
		Label:    "Guardian",
		IsHeader: true,
	})

	if !strings.Contains(out, "<b>Guardian</b>") {
		t.Fatalf("expected bold markup for header, got %q", out)
	}
	if !strings.Contains(out, "\x00nonselectable\x1ftrue") {
		t.Fatalf("expected nonselectable property for header, got %q", out)
	}
}

func TestRofiBuildArgs_UsesIndexFormatAndNoCustom(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)

	_, states := b.formatInput([]Item{
		{Label: "Pause guardian", IsActive: true},
		{Label: "Barrier inactive", IsUrgent: true},
	})
	args := b.buildArgs("dockguard", "message", states)

	if !containsArgs(args, "-format", "i") {
		t.Fatalf("expected -format i in args, got %v", args)
	}
	if !containsArg(args, "-no-custom") {
		t.Fatalf("expected -no-custom in args, got %v", args)
	}
	if !containsArgs(args, "-a", "0") {
		t.Fatalf("expected -a 0 in args, got %v", args)
	}
	if !containsArgs(args, "-u", "1") {
		t.Fatalf("expected -u 1 in args, got %v", args)
	}
	if !containsArgs(args, "-selected-row", "0") {
		t.Fatalf("expected -selected-row 0 in args, got %v", args)
	}
}

func TestRofiBuildArgs_SkipsHeaderWhenSelectingFirstRow(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)

	_, states := b.formatInput([]Item{
		{Label: "Status", IsHeader: true},
		{Label: "Resume guardian"},
	})
	args := b.buildArgs("dockguard", "", states)

	if !containsArgs(args, "-selected-row", "1") {
		t.Fatalf("expected -selected-row 1 in args, got %v", args)
	}
}

func TestRofiParseSelection_Index(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)
	items := []Item{
		{Label: "Pause guardian", Action: "pause"},
		{Label: "Recompute barrier", Action: "recompute"},
	}
	got, err := b.parseSelection("1", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != "recompute" {
		t.Fatalf("expected action recompute, got %q", got.Action)
	}
}

func TestRofiParseSelection_IndexOutOfRange(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)
	items := []Item{{Label: "a", Action: "a"}}

	if _, err := b.parseSelection("5", items); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestDmenuParseSelection_MatchesByLabel(t *testing.T) {
	b := NewDmenuBackend().(*dmenuLikeBackend)
	items := []Item{
		{Label: "Pause guardian", Action: "pause"},
		{Label: "Recompute barrier", Action: "recompute"},
	}
	got, err := b.parseSelection("Recompute barrier", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != "recompute" {
		t.Fatalf("expected action recompute, got %q", got.Action)
	}
}

func TestFormatInput_DisambiguatesDuplicateLabels(t *testing.T) {
	b := NewDmenuBackend().(*dmenuLikeBackend)
	items := []Item{
		{Label: "Dup", Action: "a"},
		{Label: "Dup", Action: "b"},
	}

	_, _ = b.formatInput(items)
	if items[0].Label != "Dup" {
		t.Fatalf("expected first label unchanged, got %q", items[0].Label)
	}
	if items[1].Label != "Dup (2)" {
		t.Fatalf("expected second label disambiguated, got %q", items[1].Label)
	}
}

func TestFormatInput_IndexBackendsDoNotDisambiguateDuplicateLabels(t *testing.T) {
	b := NewRofiBackend().(*dmenuLikeBackend)
	items := []Item{
		{Label: "Dup", Action: "a"},
		{Label: "Dup", Action: "b"},
	}

	_, _ = b.formatInput(items)
	if items[0].Label != "Dup" || items[1].Label != "Dup" {
		t.Fatalf("expected labels unchanged for index backend, got %#v", items)
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsArgs(args []string, a string, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}
