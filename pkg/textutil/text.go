package textutil

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	errs "igapi/pkg/errors"
)

var (
	// shortcodePatterns are tried in order; the path segments never overlap.
	shortcodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`instagram\.com/p/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`instagram\.com/reel/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`instagram\.com/tv/([A-Za-z0-9_-]+)`),
	}

	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9_.]{1,30}$`)
	shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	hashtagPattern   = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
	mentionPattern   = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

var (
	videoExtensions = []string{".mp4", ".mov", ".avi", ".webm"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// ExtractShortcode returns the post shortcode embedded in an Instagram
// post, reel or IGTV URL.
func ExtractShortcode(rawURL string) (string, error) {
	for _, pattern := range shortcodePatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", errs.InvalidURL(rawURL)
}

// ValidateUsername reports whether s is a well-formed Instagram handle.
func ValidateUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ValidateShortcode reports whether s is an 11 character post shortcode.
func ValidateShortcode(s string) bool {
	return shortcodePattern.MatchString(s)
}

// ExtractHashtags returns every #tag in text in order of appearance.
// Duplicates are kept.
func ExtractHashtags(text string) []string {
	return findGroups(hashtagPattern, text)
}

// ExtractMentions returns every @handle in text in order of appearance.
func ExtractMentions(text string) []string {
	return findGroups(mentionPattern, text)
}

func findGroups(pattern *regexp.Regexp, text string) []string {
	out := make([]string, 0)
	if text == "" {
		return out
	}
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// SanitizeText collapses every whitespace run to a single space and trims
// the result.
func SanitizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CleanCaption limits blank line runs to one empty line, strips trailing
// whitespace from every line and trims the whole caption.
func CleanCaption(caption string) string {
	if caption == "" {
		return ""
	}
	caption = blankLines.ReplaceAllString(caption, "\n\n")
	lines := strings.Split(caption, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FormatNumber renders n with a K, M or B suffix and one decimal place
// once it reaches a thousand.
func FormatNumber(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000_000, 'f', 1, 64) + "B"
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// IsInstagramURL reports whether rawURL points at instagram.com.
func IsInstagramURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == "instagram.com" || u.Host == "www.instagram.com"
}

// MediaType guesses "video", "image" or "unknown" from a media URL.
func MediaType(mediaURL string) string {
	if mediaURL == "" {
		return "unknown"
	}
	lower := strings.ToLower(mediaURL)
	for _, ext := range videoExtensions {
		if strings.Contains(lower, ext) {
			return "video"
		}
	}
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return "image"
		}
	}
	return "unknown"
}

// TruncateText shortens text to at most maxLen runes, ending with suffix.
func TruncateText(text string, maxLen int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := maxLen - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + suffix
}

// EngagementRate is (likes+comments)/followers as a percentage.
func EngagementRate(likes, comments, followers int64) float64 {
	if followers == 0 {
		return 0
	}
	return float64(likes+comments) / float64(followers) * 100
}
