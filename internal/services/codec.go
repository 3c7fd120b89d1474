package services

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bobarin/lyricburn/internal/apierr"
)

// FormatASSTime converts seconds to ASS timestamp format H:MM:SS.CC.
// Negative input clamps to zero. Centiseconds are truncated, not
// rounded. The hour field is never zero-padded; minutes/seconds/
// centiseconds always render as two digits.
func FormatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	centiseconds := int((seconds - float64(whole)) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centiseconds)
}

// CSSHexToASS converts a CSS #RGB or #RRGGBB color plus an alpha
// percentage (0-100, where 100 is fully opaque) into an ASS
// &HAABBGGRR color. ASS alpha is inverse of CSS opacity: 100% opaque
// maps to alpha byte 00.
func CSSHexToASS(hex string, alphaPct int) (string, error) {
	r, g, b, err := parseCSSHex(hex)
	if err != nil {
		return "", err
	}

	alphaByte := int(math.Round(float64(100-alphaPct) * 255 / 100))
	if alphaByte < 0 {
		alphaByte = 0
	}
	if alphaByte > 255 {
		alphaByte = 255
	}

	return fmt.Sprintf("&H%02X%02X%02X%02X", alphaByte, b, g, r), nil
}

func parseCSSHex(hex string) (r, g, b int, err error) {
	if len(hex) == 0 || hex[0] != '#' {
		return 0, 0, 0, apierr.New(apierr.KindInvalidColor, fmt.Sprintf("color %q must start with '#'", hex))
	}

	digits := hex[1:]
	switch len(digits) {
	case 3:
		digits = string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		})
	case 6:
		// already full-length
	default:
		return 0, 0, 0, apierr.New(apierr.KindInvalidColor, fmt.Sprintf("color %q must be #RGB or #RRGGBB", hex))
	}

	rv, err1 := strconv.ParseUint(digits[0:2], 16, 8)
	gv, err2 := strconv.ParseUint(digits[2:4], 16, 8)
	bv, err3 := strconv.ParseUint(digits[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, apierr.New(apierr.KindInvalidColor, fmt.Sprintf("color %q has non-hex digits", hex))
	}

	return int(rv), int(gv), int(bv), nil
}
