package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is the source media a burn request renders subtitles onto.
// The UUID is the sole identifier used across the HTTP surface, the DB,
// and the on-disk layout (DATA_ROOT/videos/<uuid>/source.<ext>).
type Video struct {
	ID         uuid.UUID `json:"id"`
	SourcePath string    `json:"source_path"`
	OwnerKey   string    `json:"-"` // never serialized back to clients
	CreatedAt  time.Time `json:"created_at"`
}

// Segment is a timed line of lyric text bound to one Video.
//
// ID is a local integer, unique within a video — not a UUID, since
// segments have no identity outside their parent video.
type Segment struct {
	ID      int     `json:"id"`
	VideoID uuid.UUID `json:"video_id"`
	StartS  float64 `json:"start_s"`
	EndS    float64 `json:"end_s"`
	Text    string  `json:"text"`
}

// RawSegment is what the STT collaborator hands back before the Segment
// Store has renumbered, truncated, and clipped it. It carries no ID.
type RawSegment struct {
	StartS float64
	EndS   float64
	Text   string
}

// Preset is a style shorthand for size/outline. See StyleDescriptor.
type Preset string

const (
	PresetDefault Preset = "default"
	PresetKaraoke Preset = "karaoke"
	PresetMinimal Preset = "minimal"
)

// Align is the anchor point for a subtitle line, mapped to ASS numpad
// alignment codes in the Builder.
type Align string

const (
	AlignBottomLeft   Align = "bottom-left"
	AlignBottomCenter Align = "bottom-center"
	AlignBottomRight  Align = "bottom-right"
	AlignMiddleLeft   Align = "middle-left"
	AlignMiddleCenter Align = "middle-center"
	AlignMiddleRight  Align = "middle-right"
	AlignTopLeft      Align = "top-left"
	AlignTopCenter    Align = "top-center"
	AlignTopRight     Align = "top-right"
)

// alignmentCodes maps an Align to its ASS [V4+ Styles] Alignment numpad code.
var alignmentCodes = map[Align]int{
	AlignBottomLeft:   1,
	AlignBottomCenter: 2,
	AlignBottomRight:  3,
	AlignMiddleLeft:   4,
	AlignMiddleCenter: 5,
	AlignMiddleRight:  6,
	AlignTopLeft:      7,
	AlignTopCenter:    8,
	AlignTopRight:     9,
}

// AlignmentCode returns the ASS numpad alignment code for a, or 0 if a is
// not one of the nine recognized values.
func AlignmentCode(a Align) int {
	return alignmentCodes[a]
}

// FontWhitelist is the set of font families the fonts bundle
// (FONTS_DIR) guarantees a regular/bold/italic/bold-italic variant
// for. Font resolution during burn MUST stay within this set — it is
// what makes burns reproducible across machines.
var FontWhitelist = map[string]bool{
	"Inter":          true,
	"Arial":          true,
	"Georgia":        true,
	"Helvetica":      true,
	"Times New Roman": true,
}

// StyleDescriptor is the closed record of typographic rendering options
// for one burn request. Every field has a default applied by
// ResolveDefaults; services.ResolveStyle rejects out-of-range or
// unknown values.
// StrokePx and Opacity are pointers, not plain ints: 0 is a legal
// value for both (no outline; fully transparent) and is also what an
// unset JSON field decodes to, so a non-pointer couldn't tell "caller
// said 0" from "caller said nothing" — the same reason PosX/PosY are
// pointers.
type StyleDescriptor struct {
	Preset         Preset   `json:"preset,omitempty"`
	FontFamily     string   `json:"font_family,omitempty"`
	FontSizePx     int      `json:"font_size_px,omitempty"`
	Color          string   `json:"color,omitempty"`
	Bold           bool     `json:"bold,omitempty"`
	Italic         bool     `json:"italic,omitempty"`
	StrokePx       *int     `json:"stroke_px,omitempty"`
	StrokeColor    string   `json:"stroke_color,omitempty"`
	Align          Align    `json:"align,omitempty"`
	PosX           *float64 `json:"pos_x,omitempty"`
	PosY           *float64 `json:"pos_y,omitempty"`
	MaxWidthPct    int      `json:"max_width_pct,omitempty"`
	OutlineSamples int      `json:"outline_samples,omitempty"`
	Opacity        *int     `json:"opacity,omitempty"`
	Rotation       int      `json:"rotation,omitempty"`
}

// presetShorthand holds the font_size_px/stroke_px a preset resolves to
// when the caller doesn't specify those fields explicitly. See
// SPEC_FULL.md §4 — original_source/ had no code to settle this, so the
// values below are this repo's Open Question decision (see DESIGN.md):
// karaoke favors a larger, thicker-stroked line for legibility at a
// glance; minimal favors a small, thin line that stays out of the way.
type presetShorthand struct {
	fontSizePx int
	strokePx   int
}

var presetShorthands = map[Preset]presetShorthand{
	PresetDefault: {fontSizePx: 28, strokePx: 3},
	PresetKaraoke: {fontSizePx: 40, strokePx: 4},
	PresetMinimal: {fontSizePx: 22, strokePx: 1},
}

// ResolveDefaults returns a copy of s with every unset field filled from
// the §3 default table (and, for font_size_px/stroke_px, from the
// preset's shorthand when the caller didn't set them explicitly).
func (s StyleDescriptor) ResolveDefaults() StyleDescriptor {
	if s.Preset == "" {
		s.Preset = PresetDefault
	}
	shorthand, ok := presetShorthands[s.Preset]
	if !ok {
		shorthand = presetShorthands[PresetDefault]
	}

	if s.FontFamily == "" {
		s.FontFamily = "Inter"
	}
	if s.FontSizePx == 0 {
		s.FontSizePx = shorthand.fontSizePx
	}
	if s.Color == "" {
		s.Color = "#FFFFFF"
	}
	if s.StrokePx == nil {
		strokePx := shorthand.strokePx
		s.StrokePx = &strokePx
	}
	if s.StrokeColor == "" {
		s.StrokeColor = "#000000"
	}
	if s.Align == "" {
		s.Align = AlignBottomCenter
	}
	if s.MaxWidthPct == 0 {
		s.MaxWidthPct = 90
	}
	if s.OutlineSamples == 0 {
		s.OutlineSamples = 16
	}
	if s.Opacity == nil {
		opacity := 100
		s.Opacity = &opacity
	}
	return s
}

// RenderArtifact is a transient MP4 produced by a burn invocation. It is
// never persisted: the caller streams Bytes and the backing scratch
// directory is removed on every exit path.
type RenderArtifact struct {
	Bytes []byte
}
