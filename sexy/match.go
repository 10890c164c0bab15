package sexy

import "fmt"

// Match reports whether actual has the shape described by pattern.
//
// Atoms must be equal. Inside lists and arrays, "..." matches any run of
// items (including none). Metadata and map keys present in the pattern must
// be present and match in actual; extra keys in actual are ignored.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeEllipsis {
		return nil
	}
	if pattern.Type != actual.Type {
		return fmt.Errorf("at %s: expected %s %s, got %s %s", path, pattern.Type, pattern, actual.Type, actual)
	}

	switch pattern.Type {
	case NodeSymbol, NodeString, NodeInteger:
		if pattern.Text != actual.Text {
			return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
		}
		return nil

	case NodeList:
		for i, key := range pattern.MetaKeys {
			got := actual.Meta(key)
			if got == nil {
				return fmt.Errorf("at %s: missing metadata %q in %s", path, key, actual)
			}
			if err := match(pattern.MetaItems[i], got, path+"^"+key); err != nil {
				return err
			}
		}
		return matchSeq(pattern.Items, actual.Items, path, 0)

	case NodeArray:
		return matchSeq(pattern.Items, actual.Items, path, 0)

	case NodeMap:
		for i, key := range pattern.Keys {
			got := actual.Get(key)
			if got == nil {
				return fmt.Errorf("at %s: missing key %q in %s", path, key, actual)
			}
			if err := match(pattern.Items[i], got, path+"."+key); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("at %s: cannot match %s", path, pattern.Type)
	}
}

// matchSeq matches a sequence of patterns against items; offset is the
// index of items[0] in the enclosing collection, for error paths.
func matchSeq(patterns, items []*Node, path string, offset int) error {
	if len(patterns) == 0 {
		if len(items) > 0 {
			return fmt.Errorf("at %s[%d]: unexpected extra item %s", path, offset, items[0])
		}
		return nil
	}

	if patterns[0].Type == NodeEllipsis {
		if len(patterns) == 1 {
			return nil
		}
		var err error
		for skip := 0; skip <= len(items); skip++ {
			if err = matchSeq(patterns[1:], items[skip:], path, offset+skip); err == nil {
				return nil
			}
		}
		return err
	}

	if len(items) == 0 {
		return fmt.Errorf("at %s[%d]: missing item %s", path, offset, patterns[0])
	}
	if err := match(patterns[0], items[0], fmt.Sprintf("%s[%d]", path, offset)); err != nil {
		return err
	}
	return matchSeq(patterns[1:], items[1:], path, offset+1)
}
