package jit

import "strconv"

// trimNulls applies the null trimmer (spec.md §4.F) to a completed execution: for each buffered
// nullError, it walks the nullability map from root to the error's path, finds the last ancestor
// slot whose IsNullable is true, and nulls that slot in data once per distinct cut point. It
// returns the possibly-replaced data value (nil if non-null propagated all the way to the root) and
// the final error list: errs followed by nullErrors, keeping one null error per distinct error path.
func trimNulls(data *OrderedMap, root *nullabilityNode, nullErrors []*Error, errs []*Error) (interface{}, []*Error) {
	seenCuts := map[string]bool{}
	var out interface{} = data
	rootNulled := false

	for _, ne := range nullErrors {
		cutPath := cutPointFor(root, ne.Path)
		key := pathKey(cutPath)
		if seenCuts[key] {
			continue
		}
		seenCuts[key] = true

		if len(cutPath) == 0 {
			rootNulled = true
			continue
		}
		nullSlot(data, cutPath)
	}

	if rootNulled {
		out = nil
	}

	final := append([]*Error{}, errs...)
	seenPaths := map[string]bool{}
	for _, ne := range nullErrors {
		key := pathKey(ne.Path)
		if seenPaths[key] {
			continue
		}
		seenPaths[key] = true
		final = append(final, ne)
	}
	return out, final
}

// cutPointFor walks the nullability map along errPath and returns the path (a prefix of errPath) of
// the last ancestor whose slot is nullable. An empty return means no nullable ancestor exists and
// the whole response must be nulled.
func cutPointFor(root *nullabilityNode, errPath []interface{}) []interface{} {
	node := root
	lastNullable := -1
	for i, key := range errPath {
		var childKey string
		if s, ok := key.(string); ok {
			childKey = s
		}
		next := node.child(childKey)
		if next == nil {
			break
		}
		if next.IsNullable {
			lastNullable = i
		}
		node = next
	}
	if lastNullable < 0 {
		return nil
	}
	return errPath[:lastNullable+1]
}

func nullSlot(data *OrderedMap, path []interface{}) {
	cur := interface{}(data)
	for i, key := range path {
		last := i == len(path)-1
		switch k := key.(type) {
		case string:
			m, ok := cur.(*OrderedMap)
			if !ok {
				return
			}
			if last {
				m.Set(k, nil)
				return
			}
			next, _ := m.Get(k)
			cur = next
		case int:
			l, ok := cur.([]interface{})
			if !ok || k >= len(l) {
				return
			}
			if last {
				l[k] = nil
				return
			}
			cur = l[k]
		}
	}
}

func pathKey(path []interface{}) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "/"
		}
		switch v := p.(type) {
		case string:
			s += "s:" + v
		case int:
			s += "i:" + strconv.Itoa(v)
		}
	}
	return s
}
