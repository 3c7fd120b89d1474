package services

import (
	"strings"
	"testing"

	"github.com/bobarin/lyricburn/internal/models"
)

func resolvedDefault(t *testing.T) models.StyleDescriptor {
	t.Helper()
	style, err := ResolveStyle(models.StyleDescriptor{})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	return style
}

func TestBuildASSScriptInfo(t *testing.T) {
	doc := BuildASS(nil, resolvedDefault(t), 1080, 1920)

	for _, want := range []string{
		"[Script Info]",
		"ScriptType: v4.00+",
		"PlayResX: 1080",
		"PlayResY: 1920",
		"WrapStyle: 2",
		"ScaledBorderAndShadow: yes",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestBuildASSStyleLine(t *testing.T) {
	style := resolvedDefault(t)
	doc := BuildASS(nil, style, 1920, 1080)

	if !strings.Contains(doc, "[V4+ Styles]") {
		t.Fatal("missing [V4+ Styles] section")
	}
	if !strings.Contains(doc, "Style: Default,Inter,28,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,3,0,2,0,0,0,1") {
		t.Errorf("unexpected style line in:\n%s", doc)
	}
}

func TestBuildASSEventCountAndOrder(t *testing.T) {
	segments := []models.Segment{
		{ID: 0, StartS: 0, EndS: 1.5, Text: "first line"},
		{ID: 1, StartS: 1.5, EndS: 3.25, Text: "second line"},
	}
	doc := BuildASS(segments, resolvedDefault(t), 1920, 1080)

	lines := dialogueLines(doc)
	if len(lines) != 2 {
		t.Fatalf("got %d Dialogue lines, want 2:\n%s", len(lines), doc)
	}
	if !strings.Contains(lines[0], "0:00:00.00,0:00:01.50,Default,,0,0,0,,first line") {
		t.Errorf("unexpected first dialogue line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "0:00:01.50,0:00:03.25,Default,,0,0,0,,second line") {
		t.Errorf("unexpected second dialogue line: %q", lines[1])
	}
}

func TestBuildASSPositionOverride(t *testing.T) {
	x, y := 960.0, 950.0
	style := resolvedDefault(t)
	style.PosX = &x
	style.PosY = &y
	style.Rotation = 5

	doc := BuildASS([]models.Segment{{StartS: 0, EndS: 1, Text: "hi"}}, style, 1920, 1080)

	lines := dialogueLines(doc)
	if len(lines) != 1 {
		t.Fatalf("got %d dialogue lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], `{\pos(960,950)\frz5}hi`) {
		t.Errorf("unexpected override prefix in: %q", lines[0])
	}
}

func TestBuildASSTextEscaping(t *testing.T) {
	segments := []models.Segment{
		{StartS: 0, EndS: 1, Text: "a {brace} and \\slash\nsecond line"},
	}
	doc := BuildASS(segments, resolvedDefault(t), 1920, 1080)

	lines := dialogueLines(doc)
	if len(lines) != 1 {
		t.Fatalf("got %d dialogue lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], `a \{brace\} and \\slash\Nsecond line`) {
		t.Errorf("escaping mismatch: %q", lines[0])
	}
}

func TestBuildASSNoSegments(t *testing.T) {
	doc := BuildASS(nil, resolvedDefault(t), 1920, 1080)
	if dialogueLines(doc) != nil {
		t.Errorf("expected no Dialogue lines for empty segment list")
	}
	if !strings.Contains(doc, "[Events]") {
		t.Error("expected [Events] section even with no segments")
	}
}

func dialogueLines(doc string) []string {
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "Dialogue:") {
			out = append(out, line)
		}
	}
	return out
}
