package services

import (
	"testing"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

func TestResolveStyleDefaults(t *testing.T) {
	resolved, err := ResolveStyle(models.StyleDescriptor{})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if resolved.FontFamily != "Inter" {
		t.Errorf("FontFamily = %q, want Inter", resolved.FontFamily)
	}
	if resolved.Align != models.AlignBottomCenter {
		t.Errorf("Align = %q, want bottom-center", resolved.Align)
	}
}

func TestResolveStyleRejectsUnknownFont(t *testing.T) {
	_, err := ResolveStyle(models.StyleDescriptor{FontFamily: "Comic Sans"})
	assertInvalidInput(t, err)
}

func TestResolveStyleRejectsOutOfRangeFontSize(t *testing.T) {
	_, err := ResolveStyle(models.StyleDescriptor{FontSizePx: 500})
	assertInvalidInput(t, err)
}

func TestResolveStyleRejectsOutOfRangeOpacity(t *testing.T) {
	opacity := 150
	_, err := ResolveStyle(models.StyleDescriptor{Opacity: &opacity})
	assertInvalidInput(t, err)
}

func TestResolveStyleAcceptsZeroOpacityAndStroke(t *testing.T) {
	opacity, stroke := 0, 0
	resolved, err := ResolveStyle(models.StyleDescriptor{Opacity: &opacity, StrokePx: &stroke})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if *resolved.Opacity != 0 {
		t.Errorf("Opacity = %d, want 0", *resolved.Opacity)
	}
	if *resolved.StrokePx != 0 {
		t.Errorf("StrokePx = %d, want 0", *resolved.StrokePx)
	}
}

func TestResolveStyleRejectsOutOfRangeRotation(t *testing.T) {
	_, err := ResolveStyle(models.StyleDescriptor{Rotation: 400})
	assertInvalidInput(t, err)
}

func TestResolveStyleRejectsUnknownAlign(t *testing.T) {
	_, err := ResolveStyle(models.StyleDescriptor{Align: models.Align("center-ish")})
	assertInvalidInput(t, err)
}

func TestResolveStyleRejectsPartialPosition(t *testing.T) {
	x := 100.0
	_, err := ResolveStyle(models.StyleDescriptor{PosX: &x})
	assertInvalidInput(t, err)
}

func TestResolveStyleAcceptsFullPosition(t *testing.T) {
	x, y := 100.0, 200.0
	resolved, err := ResolveStyle(models.StyleDescriptor{PosX: &x, PosY: &y})
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if *resolved.PosX != 100 || *resolved.PosY != 200 {
		t.Errorf("position not preserved: got (%v, %v)", *resolved.PosX, *resolved.PosY)
	}
}

func TestResolveStyleRejectsInvalidColor(t *testing.T) {
	_, err := ResolveStyle(models.StyleDescriptor{Color: "not-a-color"})
	if apierr.KindOf(err) != apierr.KindInvalidColor {
		t.Errorf("expected KindInvalidColor, got %v", apierr.KindOf(err))
	}
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if apierr.KindOf(err) != apierr.KindInvalidInput {
		t.Errorf("expected KindInvalidInput, got %v", apierr.KindOf(err))
	}
}
