package loader

import "sync"

// Loading holds per-section busy flags for a single screen: the main table, a
// secondary table, the form, and any number of dynamically keyed widgets.
type Loading struct {
	mu             sync.RWMutex
	table          bool
	secondaryTable bool
	form           bool
	dynamic        map[string]bool
}

// Section names accepted by Set.
const (
	SectionTable          = "table"
	SectionSecondaryTable = "secondaryTable"
	SectionForm           = "form"
)

// Set flips a fixed section or a dynamic key.
func (l *Loading) Set(key string, on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch key {
	case SectionTable:
		l.table = on
	case SectionSecondaryTable:
		l.secondaryTable = on
	case SectionForm:
		l.form = on
	default:
		if l.dynamic == nil {
			l.dynamic = map[string]bool{}
		}
		l.dynamic[key] = on
	}
}

// Get reads a fixed section or a dynamic key.
func (l *Loading) Get(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch key {
	case SectionTable:
		return l.table
	case SectionSecondaryTable:
		return l.secondaryTable
	case SectionForm:
		return l.form
	default:
		return l.dynamic[key]
	}
}

// SetDynamic registers keys, all initially idle.
func (l *Loading) SetDynamic(keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dynamic == nil {
		l.dynamic = map[string]bool{}
	}
	for _, k := range keys {
		l.dynamic[k] = false
	}
}

// Reset clears every flag and forgets dynamic keys.
func (l *Loading) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.table, l.secondaryTable, l.form = false, false, false
	l.dynamic = map[string]bool{}
}

// IsDisabled is true when any section, dynamic key or extra flag is set.
func (l *Loading) IsDisabled(extra ...bool) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.table || l.form || l.secondaryTable {
		return true
	}
	for _, v := range extra {
		if v {
			return true
		}
	}
	for _, v := range l.dynamic {
		if v {
			return true
		}
	}
	return false
}

// RowFlags returns n idle flags keyed by row index.
func RowFlags(n int) map[int]bool {
	out := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		out[i] = false
	}
	return out
}
