package validation

import (
	"regexp"
	"strings"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
	"golang.org/x/text/encoding/unicode"
)

// YouTubeURLPattern accepts watch and youtu.be URLs, with or without scheme and
// "www.", followed by any continuation free of whitespace. Whitespace is every
// Unicode space rune, not only ASCII, and a single trailing newline is
// tolerated at the very end.
const YouTubeURLPattern = `^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/)[a-zA-Z0-9_-]+(` + nonSpace + `*)?\n?\z`

// nonSpace matches one rune that is not whitespace in the Unicode sense.
const nonSpace = `[^\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`

var (
	youtubeURLRegex = regexp.MustCompile(YouTubeURLPattern)
	// Same language as youtubeURLRegex with the identifier captured.
	videoIDRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)(?:` + nonSpace + `*)?\n?\z`)
)

// DecodePercent resolves %XX escapes. Malformed escapes are left untouched and
// '+' is not treated as a space. Byte sequences that do not form valid UTF-8
// after decoding are replaced with U+FFFD.
func DecodePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}

	decoded, err := unicode.UTF8.NewDecoder().Bytes(buf)
	if err != nil {
		return string(buf)
	}
	return string(decoded)
}

// HasHTTPScheme reports whether s starts with "http". The check is
// case-sensitive and intentionally shallow.
func HasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http")
}

// IsValidYouTubeURL reports whether s matches YouTubeURLPattern.
func IsValidYouTubeURL(s string) bool {
	return youtubeURLRegex.MatchString(s)
}

// VideoID returns the video identifier of a URL accepted by IsValidYouTubeURL,
// or an empty string.
func VideoID(s string) string {
	m := videoIDRegex.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidateURL decodes raw and runs the scheme and pattern checks in order,
// returning the decoded URL or the first rejection.
func ValidateURL(raw string) (string, error) {
	decoded := DecodePercent(raw)

	if !HasHTTPScheme(decoded) {
		return "", apperrors.NewBadInputError(decoded)
	}
	if !IsValidYouTubeURL(decoded) {
		return "", apperrors.NewInvalidSourceError(decoded)
	}
	return decoded, nil
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
