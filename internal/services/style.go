package services

import (
	"fmt"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

// ResolveStyle applies defaults and validates a caller-supplied style
// descriptor per SPEC_FULL.md §4 / spec.md §3. An unset (zero-value)
// field is treated as "use the default". stroke_px and opacity are the
// two fields whose legal range includes 0 as a meaningful value (no
// outline; fully transparent), so ResolveDefaults carries them as
// pointers rather than plain ints — the same treatment pos_x/pos_y
// already get — so a caller-supplied 0 survives instead of being
// read back as "unset".
func ResolveStyle(s models.StyleDescriptor) (models.StyleDescriptor, error) {
	resolved := s.ResolveDefaults()

	switch resolved.Preset {
	case models.PresetDefault, models.PresetKaraoke, models.PresetMinimal:
	default:
		return resolved, apierr.New(apierr.KindInvalidInput, fmt.Sprintf("unknown preset %q", resolved.Preset))
	}

	if !models.FontWhitelist[resolved.FontFamily] {
		return resolved, apierr.New(apierr.KindInvalidInput, fmt.Sprintf("font_family %q is not bundled", resolved.FontFamily))
	}

	if resolved.FontSizePx < 8 || resolved.FontSizePx > 200 {
		return resolved, apierr.New(apierr.KindInvalidInput, "font_size_px must be in [8, 200]")
	}

	if *resolved.StrokePx < 0 || *resolved.StrokePx > 16 {
		return resolved, apierr.New(apierr.KindInvalidInput, "stroke_px must be in [0, 16]")
	}

	if resolved.MaxWidthPct < 10 || resolved.MaxWidthPct > 100 {
		return resolved, apierr.New(apierr.KindInvalidInput, "max_width_pct must be in [10, 100]")
	}

	if *resolved.Opacity < 0 || *resolved.Opacity > 100 {
		return resolved, apierr.New(apierr.KindInvalidInput, "opacity must be in [0, 100]")
	}

	if resolved.Rotation < 0 || resolved.Rotation > 359 {
		return resolved, apierr.New(apierr.KindInvalidInput, "rotation must be in [0, 359]")
	}

	if models.AlignmentCode(resolved.Align) == 0 {
		return resolved, apierr.New(apierr.KindInvalidInput, fmt.Sprintf("unknown align %q", resolved.Align))
	}

	if (resolved.PosX == nil) != (resolved.PosY == nil) {
		return resolved, apierr.New(apierr.KindInvalidInput, "pos_x and pos_y must both be set or both be null")
	}

	if _, err := CSSHexToASS(resolved.Color, 100); err != nil {
		return resolved, err
	}
	if _, err := CSSHexToASS(resolved.StrokeColor, 100); err != nil {
		return resolved, err
	}

	return resolved, nil
}
