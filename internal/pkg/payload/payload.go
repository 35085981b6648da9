// Package payload shapes notification titles, bodies and auxiliary data for
// push delivery. The transport contract requires every data value to be a
// string, so all auxiliary fields go through Stringify before dispatch.
package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/campuschat/notification-service/internal/domain"
)

// Body truncation limits. These differ per call site and are deliberately
// separate constants, not one global.
const (
	BodyLimit        = 120 // plain description
	UnitBodyLimit    = 100 // description prefixed with the unit code
	CompactBodyLimit = 80  // tenant-scoped compact body
	ChatPreviewLimit = 50  // chat message preview
)

// CompactSuffix is appended to a compact body when the description was cut.
const CompactSuffix = "... Tap to view."

// Ellipsis is appended to a chat preview when the text was cut.
const Ellipsis = "..."

// Titles for the broadcast and fallback paths.
const (
	GeneralTitle  = "📢 General Announcement"
	FallbackTitle = "📢 Announcement"
	WelcomeTitle  = "🎉 Welcome to Campus Chat!"
	ChatTitle     = "💬 New Message"
)

var titles = map[string]string{
	domain.CategoryNotes:             "📚 New Notes",
	domain.CategoryPastPaper:         "📄 Past Paper",
	domain.CategoryAssignment:        "📝 New Assignment",
	domain.CategoryCAT:               "⚠️ Upcoming CAT",
	domain.CategoryClassConfirmation: "🎓 Class Confirmation",
}

// loweredTitles serves the case-insensitive lookup variant.
var loweredTitles = func() map[string]string {
	m := make(map[string]string, len(titles))
	for k, v := range titles {
		m[strings.ToLower(k)] = v
	}
	return m
}()

// TitleOptions selects the category-lookup behavior of a call site.
// The flat announcement path matches categories case-sensitively; the
// tenant-scoped path lower-cases the category before lookup.
type TitleOptions struct {
	FoldCase bool
}

// Title maps an announcement category to its decorated notification title.
// Unmapped categories fall back to the generic announcement title.
func Title(category string, opts TitleOptions) string {
	var t string
	var ok bool
	if opts.FoldCase {
		t, ok = loweredTitles[strings.ToLower(category)]
	} else {
		t, ok = titles[category]
	}
	if !ok {
		return FallbackTitle
	}
	return t
}

// Body builds the notification body for a non-General announcement. When the
// announcement names a unit, the truncated description is prefixed with the
// unit code; otherwise the truncated description stands alone.
func Body(a *domain.Announcement) string {
	if a.UnitTitle != "" {
		return fmt.Sprintf("%s - %s", a.UnitCode, Truncate(a.Description, UnitBodyLimit))
	}
	return Truncate(a.Description, BodyLimit)
}

// CompactBody builds the shorter tenant-scoped body variant. A truncated
// description carries the tap-to-view suffix.
func CompactBody(a *domain.Announcement) string {
	body := Truncate(a.Description, CompactBodyLimit)
	if body != a.Description {
		body += CompactSuffix
	}
	return body
}

// ChatBody builds the chat notification body: "{sender}: {preview}".
func ChatBody(senderName, text string) string {
	preview := Truncate(text, ChatPreviewLimit)
	if preview != text {
		preview += Ellipsis
	}
	return fmt.Sprintf("%s: %s", senderName, preview)
}

// FirstLine returns everything before the first newline. Used as the body of
// a General broadcast, whose display text is the announcement title itself.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Stringify coerces every auxiliary data value to its string representation.
// Absent optional fields must be passed as nil or empty values; they come out
// as empty strings rather than being omitted. Re-stringifying an already
// stringified map yields identical values.
func Stringify(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
