package dataflow

import "github.com/hatlesswizard/hakanaflow/pkg/strid"

// ArrayDataKind distinguishes whether an array-shaped path flows a key or a
// value.
type ArrayDataKind uint8

const (
	ArrayKey ArrayDataKind = iota
	ArrayValue
)

// PathTag enumerates the edge-label variants an edge can carry.
type PathTag uint8

const (
	PathDefault PathTag = iota
	PathArrayAssignment
	PathArrayFetch
	PathPropertyAssignment
	PathPropertyFetch
	PathAggregate
	PathRemoveDictKey
	PathScalarTypeGuard
	PathCoalesce
	PathAwaited
	PathRefine
)

// PathKind is a single edge label. It is a plain comparable struct so it can
// be compared for membership in an ignore-list and used as a map value.
// Only the fields relevant to Tag are meaningful.
type PathKind struct {
	Tag       PathTag
	ArrayKind ArrayDataKind // PathArrayAssignment, PathArrayFetch
	Key       string        // PathArrayAssignment, PathArrayFetch: the dict/array key
	Field     strid.ID      // PathPropertyAssignment, PathPropertyFetch
}

// Default is the zero-value, untagged path.
func Default() PathKind { return PathKind{Tag: PathDefault} }

// ArrayAssignment builds an edge label for writing into an array/dict at key.
func ArrayAssignment(kind ArrayDataKind, key string) PathKind {
	return PathKind{Tag: PathArrayAssignment, ArrayKind: kind, Key: key}
}

// ArrayFetch builds an edge label for reading from an array/dict at key.
func ArrayFetch(kind ArrayDataKind, key string) PathKind {
	return PathKind{Tag: PathArrayFetch, ArrayKind: kind, Key: key}
}

// PropertyAssignment builds an edge label for writing to an object field.
func PropertyAssignment(field strid.ID) PathKind {
	return PathKind{Tag: PathPropertyAssignment, Field: field}
}

// PropertyFetch builds an edge label for reading an object field.
func PropertyFetch(field strid.ID) PathKind {
	return PathKind{Tag: PathPropertyFetch, Field: field}
}

// Path is the edge payload stored between two nodes: a label plus the set of
// sink-type taint tags it adds or strips as data flows across it.
type Path struct {
	Kind          PathKind
	AddedTaints   []string
	RemovedTaints []string
}

func containsPathKind(kinds []PathKind, k PathKind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
