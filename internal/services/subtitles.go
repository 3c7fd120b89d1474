package services

import (
	"fmt"
	"strings"

	"github.com/bobarin/lyricburn/internal/models"
)

// ---------------------------------------------------------------------------
// ASS Document Builder
//
// Composes a complete Advanced SubStation Alpha v4+ script from an
// already-resolved style descriptor, a PlayRes, and an ordered,
// non-overlapping segment list. Line endings are "\n"; output is UTF-8
// with no BOM. The golden bit-level contract (spec.md §6) lives
// entirely in this file: change it deliberately.
// ---------------------------------------------------------------------------

// BuildASS renders segments into a single ASS document using style
// (already resolved via ResolveStyle) and the PlayRes probed from the
// source video. Segments must already be sorted by start_s and
// non-overlapping — the Segment Store guarantees both.
func BuildASS(segments []models.Segment, style models.StyleDescriptor, playResX, playResY int) string {
	var sb strings.Builder

	writeScriptInfo(&sb, playResX, playResY)
	sb.WriteString("\n")
	writeStyles(&sb, style)
	sb.WriteString("\n")
	writeEvents(&sb, segments, style)

	return sb.String()
}

func writeScriptInfo(sb *strings.Builder, playResX, playResY int) {
	sb.WriteString("[Script Info]\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(sb, "PlayResX: %d\n", playResX)
	fmt.Fprintf(sb, "PlayResY: %d\n", playResY)
	sb.WriteString("WrapStyle: 2\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n")
}

func writeStyles(sb *strings.Builder, style models.StyleDescriptor) {
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")

	// PrimaryColour carries the style's opacity; OutlineColour and
	// BackColour do not (outline is always fully opaque; back is opaque
	// black, but it is the shadow colour under BorderStyle 1 and Shadow
	// is 0, so it is never drawn).
	primary, _ := CSSHexToASS(style.Color, *style.Opacity)
	outline, _ := CSSHexToASS(style.StrokeColor, 100)
	const backColour = "&H00000000"

	bold := "0"
	if style.Bold {
		bold = "-1"
	}
	italic := "0"
	if style.Italic {
		italic = "-1"
	}

	fmt.Fprintf(sb,
		"Style: Default,%s,%d,%s,%s,%s,%s,%s,%s,0,0,100,100,0,0,1,%d,0,%d,0,0,0,1\n",
		style.FontFamily, style.FontSizePx,
		primary, primary, outline, backColour,
		bold, italic,
		*style.StrokePx,
		models.AlignmentCode(style.Align),
	)
}

func writeEvents(sb *strings.Builder, segments []models.Segment, style models.StyleDescriptor) {
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	override := inlineOverride(style)

	for _, seg := range segments {
		fmt.Fprintf(sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s%s\n",
			FormatASSTime(seg.StartS),
			FormatASSTime(seg.EndS),
			override,
			escapeASSText(seg.Text),
		)
	}
}

// inlineOverride builds the {\pos(...)\frz...} prefix shared by every
// Dialogue line in a burn, per spec.md §4.3. Returns "" when neither
// an absolute position nor a rotation applies.
func inlineOverride(style models.StyleDescriptor) string {
	var tags []string

	if style.PosX != nil && style.PosY != nil {
		tags = append(tags, fmt.Sprintf("\\pos(%s,%s)", trimFloat(*style.PosX), trimFloat(*style.PosY)))
	}
	if style.Rotation != 0 {
		tags = append(tags, fmt.Sprintf("\\frz%d", style.Rotation))
	}

	if len(tags) == 0 {
		return ""
	}
	return "{" + strings.Join(tags, "") + "}"
}

// trimFloat renders a float64 without a trailing ".0" for whole
// numbers, matching how position coordinates appear in hand-authored
// ASS files.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// escapeASSText escapes a lyric line for the Text field of a Dialogue
// event. Backslashes and braces are escaped, newlines become \N.
// Commas are left alone: Text is the tail field and isn't split on
// commas.
func escapeASSText(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case '\\':
			sb.WriteString("\\\\")
		case '{':
			sb.WriteString("\\{")
		case '}':
			sb.WriteString("\\}")
		case '\n':
			sb.WriteString("\\N")
		case '\r':
			// dropped — \r\n line breaks collapse to a single \N
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
