package docblock

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// rewrites turn low-level parser messages into the wording shown to users.
var rewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?s)^the tag "(.*)" does not seem to be wellformed, please check it for errors$`), "Invalid tag `$1`"},
	{regexp.MustCompile(`(?s)^expected a non-empty value.*$`), "Expected a non-empty value"},
}

// Humanize rewrites a tag parsing error into a user-facing message.
func Humanize(err error) string {
	msg := err.Error()
	for _, rw := range rewrites {
		if rw.re.MatchString(msg) {
			return rw.re.ReplaceAllString(msg, rw.repl)
		}
	}
	msg = strings.TrimSpace(msg)
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
