// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmltree

// Matcher decides whether an element is the one being looked for.
type Matcher interface {
	Match(e *Element) bool
}

// Qualified matches elements by namespace URI and local name.
type Qualified struct {
	Space string
	Local string
}

// Match implements Matcher.
func (q Qualified) Match(e *Element) bool {
	return e.Name.Space == q.Space && e.Name.Local == q.Local
}

// Local matches elements by local name, whatever their namespace.
type Local string

// Match implements Matcher.
func (l Local) Match(e *Element) bool {
	return e.Name.Local == string(l)
}

// Lookup is an ordered list of matcher tiers. A lookup returns the matches of
// the first tier that matches anything.
type Lookup []Matcher

// TwoTier returns a lookup that tries the namespace-qualified name first and
// then the bare local name. An empty space yields a single local-name tier.
func TwoTier(space, local string) Lookup {
	if space == "" {
		return Lookup{Local(local)}
	}
	return Lookup{Qualified{Space: space, Local: local}, Local(local)}
}

// Children returns the direct children of e matched by the first productive tier.
func (l Lookup) Children(e *Element) []*Element {
	for _, m := range l {
		var out []*Element
		for _, c := range e.Children {
			if m.Match(c) {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Descendants returns every element below e, in document order, matched by
// the first productive tier. e itself is not considered.
func (l Lookup) Descendants(e *Element) []*Element {
	for _, m := range l {
		var out []*Element
		for _, c := range e.Children {
			c.walk(func(el *Element) {
				if m.Match(el) {
					out = append(out, el)
				}
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// First returns the first element Descendants would return, or nil.
func (l Lookup) First(e *Element) *Element {
	if found := l.Descendants(e); len(found) > 0 {
		return found[0]
	}
	return nil
}
