package transform

import "strconv"

// get reads the value at path within tree, walking nested maps and
// (for integer segments) slices — the same path convention
// internal/uetr uses for its XPath-style lookups.
//
// decodeXML only promotes a repeated element to a slice once a second
// sibling is actually seen (appendChild), so a path that indexes "0"
// into what turned out to be a single occurrence finds a bare map
// instead. Index 0 against a map is therefore treated as a singleton
// collapse — stay on the same node — rather than a lookup failure;
// any other index against a map is out of bounds.
func get(tree map[string]any, path []string) (any, bool) {
	var cur any = tree
	for _, segment := range path {
		switch v := cur.(type) {
		case map[string]any:
			if idx, err := strconv.Atoi(segment); err == nil {
				if idx != 0 {
					return nil, false
				}
				continue
			}
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// set writes value at path within tree, creating intermediate maps as
// needed. Integer path segments are not supported as destinations —
// the generic walker only ever builds new destination trees, which
// never need the array-index addressing an already-populated source
// tree does.
func set(tree map[string]any, path []string, value any) {
	cur := tree
	for i, segment := range path {
		if i == len(path)-1 {
			cur[segment] = value
			return
		}
		next, ok := cur[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[segment] = next
		}
		cur = next
	}
}

// walk applies every FieldMap in m to src, returning the populated
// destination tree and the Dest paths of any Required field that was
// absent at its Source path.
func walk(m Mapping, src map[string]any) (dest map[string]any, missing []string) {
	dest = make(map[string]any)
	for _, f := range m.Fields {
		v, ok := get(src, f.Source)
		if !ok {
			if f.Required {
				missing = append(missing, pathString(f.Dest))
			}
			continue
		}
		set(dest, f.Dest, v)
	}
	return dest, missing
}

func pathString(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
