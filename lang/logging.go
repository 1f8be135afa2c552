package lang

import (
	"reflect"
	"sort"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// nodeTypeName returns the unqualified type name of n, e.g. "BinaryOp".
func nodeTypeName(n Node) string {
	if n == nil {
		return "nil"
	}

	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Name()
}
