package docblock

import "github.com/phobologic/phpdocgen/internal/tag"

// Params returns the @param tags.
func (d *DocBlock) Params() []*tag.Param {
	var out []*tag.Param
	for _, t := range d.tags["param"] {
		if p, ok := t.(*tag.Param); ok {
			out = append(out, p)
		}
	}
	return out
}

// Param returns the @param tag for the named variable (case-sensitive).
func (d *DocBlock) Param(variable string) *tag.Param {
	for _, p := range d.Params() {
		if p.Variable == variable {
			return p
		}
	}
	return nil
}

// Return returns the first @return tag, or nil.
func (d *DocBlock) Return() *tag.Return {
	for _, t := range d.tags["return"] {
		if r, ok := t.(*tag.Return); ok {
			return r
		}
	}
	return nil
}

// Throws returns the @throws tags in source order.
func (d *DocBlock) Throws() []*tag.Throws {
	var out []*tag.Throws
	for _, t := range d.tags["throws"] {
		if th, ok := t.(*tag.Throws); ok {
			out = append(out, th)
		}
	}
	return out
}

// See returns the @see tags in source order.
func (d *DocBlock) See() []*tag.See {
	var out []*tag.See
	for _, t := range d.tags["see"] {
		if s, ok := t.(*tag.See); ok {
			out = append(out, s)
		}
	}
	return out
}

// Deprecated returns the first @deprecated tag, or nil.
func (d *DocBlock) Deprecated() *tag.Deprecated {
	for _, t := range d.tags["deprecated"] {
		if dep, ok := t.(*tag.Deprecated); ok {
			return dep
		}
	}
	return nil
}

// Methods returns the @method tags.
func (d *DocBlock) Methods() []*tag.Method {
	var out []*tag.Method
	for _, t := range d.tags["method"] {
		if m, ok := t.(*tag.Method); ok {
			out = append(out, m)
		}
	}
	return out
}

// Var returns the first @var tag, or nil.
func (d *DocBlock) Var() *tag.Var {
	for _, t := range d.tags["var"] {
		if v, ok := t.(*tag.Var); ok {
			return v
		}
	}
	return nil
}
