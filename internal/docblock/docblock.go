// Package docblock turns PHP documentation comments into structured
// DocBlocks: a summary, a long description and an ordered map of tags.
package docblock

import (
	"errors"
	"regexp"
	"strings"

	"github.com/phobologic/phpdocgen/internal/errlog"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// ErrMalformed is returned by ParseStrict for text that is not a
// /** ... */ documentation comment.
var ErrMalformed = errors.New("malformed docblock")

var tagStartRe = regexp.MustCompile(`^@([A-Za-z_\\][\w\-\\:]*)(.*)$`)

// Context carries what the normalizer needs besides the comment text.
type Context struct {
	// Types resolves class names found in tag types.
	Types tag.Context
	// Owner is the entity the docblock documents; malformed tags are
	// reported against it.
	Owner errlog.Ref
	// Log receives malformed-tag records. May be nil.
	Log *errlog.Log
}

// DocBlock is a parsed documentation comment.
type DocBlock struct {
	Summary     string
	Description string

	names []string
	tags  map[string][]tag.Tag
}

// Empty returns a DocBlock with no text and no tags.
func Empty() *DocBlock {
	return &DocBlock{tags: map[string][]tag.Tag{}}
}

// Parse normalizes raw into a DocBlock. It never fails: text that is not a
// documentation comment yields an empty DocBlock, and a tag its parser
// rejects is reported to ctx.Log and left out.
func Parse(raw string, ctx Context) *DocBlock {
	lines, ok := commentLines(raw)
	if !ok {
		return Empty()
	}
	return build(lines, ctx)
}

// ParseStrict is Parse for callers that must not degrade: it returns
// ErrMalformed when raw is present but is not a documentation comment.
// An empty raw string is not an error.
func ParseStrict(raw string, ctx Context) (*DocBlock, error) {
	if strings.TrimSpace(raw) == "" {
		return Empty(), nil
	}
	lines, ok := commentLines(raw)
	if !ok {
		return nil, ErrMalformed
	}
	return build(lines, ctx), nil
}

// commentLines strips the comment delimiters and the leading "*" gutter.
func commentLines(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/**") || !strings.HasSuffix(raw, "*/") || len(raw) < 5 {
		return nil, false
	}
	body := raw[3 : len(raw)-2]
	src := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(src))
	for _, l := range src {
		l = strings.TrimLeft(l, " \t")
		if strings.HasPrefix(l, "*") {
			l = strings.TrimPrefix(l[1:], " ")
		}
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	return lines, true
}

type rawTag struct {
	name string
	body []string
}

func build(lines []string, ctx Context) *DocBlock {
	d := Empty()

	var text []string
	i := 0
	for ; i < len(lines); i++ {
		if tagStartRe.MatchString(lines[i]) {
			break
		}
		text = append(text, lines[i])
	}
	d.Summary, d.Description = splitText(text)

	var pending []rawTag
	var cur *rawTag
	for ; i < len(lines); i++ {
		l := lines[i]
		if m := tagStartRe.FindStringSubmatch(l); m != nil {
			pending = append(pending, rawTag{name: m[1], body: []string{m[2]}})
			cur = &pending[len(pending)-1]
			continue
		}
		if strings.TrimSpace(l) == "" {
			cur = nil
			continue
		}
		if cur != nil {
			cur.body = append(cur.body, strings.TrimSpace(l))
		}
	}

	for _, rt := range pending {
		t, err := tag.Parse(rt.name, strings.Join(rt.body, "\n"), ctx.Types)
		if err != nil {
			report(ctx, err)
			continue
		}
		d.add(t)
	}
	return d
}

// splitText separates the first paragraph from the rest.
func splitText(lines []string) (string, string) {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := start
	for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
		end++
	}
	summary := strings.Join(lines[start:end], "\n")
	description := strings.TrimSpace(strings.Join(lines[end:], "\n"))
	return summary, description
}

func report(ctx Context, err error) {
	if ctx.Log == nil || ctx.Owner == nil {
		return
	}
	ctx.Log.Append(ctx.Owner, Humanize(err))
}

// add files t under its canonical lower-cased name, so @Throws and @throw
// land with @throws.
func (d *DocBlock) add(t tag.Tag) {
	name := strings.ToLower(t.Name())
	if _, ok := d.tags[name]; !ok {
		d.names = append(d.names, name)
	}
	d.tags[name] = append(d.tags[name], t)
}

// FullText joins the summary and description with a newline. It is empty
// when the summary is empty.
func (d *DocBlock) FullText() string {
	if d.Summary == "" {
		return ""
	}
	if d.Description == "" {
		return d.Summary
	}
	return d.Summary + "\n" + d.Description
}

// IsEmpty reports whether the block has no text and no tags.
func (d *DocBlock) IsEmpty() bool {
	return d.Summary == "" && d.Description == "" && len(d.names) == 0
}

// TagNames returns the canonical tag names in first-occurrence order.
func (d *DocBlock) TagNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Tags returns every occurrence of the named tag in source order. Names
// are matched case-insensitively.
func (d *DocBlock) Tags(name string) []tag.Tag {
	return d.tags[strings.ToLower(name)]
}

// HasTag reports whether at least one tag with that name was kept.
func (d *DocBlock) HasTag(name string) bool {
	return len(d.tags[strings.ToLower(name)]) > 0
}
