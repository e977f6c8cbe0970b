package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalKeyStringsMap_TabKeys(t *testing.T) {
	for s, want := range map[string]KeyName{
		"1": KeyTabYourPrs,
		"2": KeyTabReviews,
		"3": KeyTabUnreads,
		"4": KeyTabAssignments,
	} {
		got, ok := GlobalKeyStringsMap[s]
		assert.True(t, ok, "%q must be bound", s)
		assert.Equal(t, want, got)
	}
}

func TestGlobalKeyStringsMap_EveryNameHasBinding(t *testing.T) {
	for s, name := range GlobalKeyStringsMap {
		b, ok := GlobalkeyBindings[name]
		if !assert.True(t, ok, "no binding for %q", s) {
			continue
		}
		assert.Contains(t, b.Keys(), s, "binding for %q does not list the key", s)
	}
}

func TestGlobalKeyBindings_Labels(t *testing.T) {
	if got := GlobalkeyBindings[KeyEnter].Help().Desc; got != "open in browser" {
		t.Fatalf("KeyEnter help desc = %q, want %q", got, "open in browser")
	}
	if got := GlobalkeyBindings[KeyPopout].Help().Key; got != "p" {
		t.Fatalf("KeyPopout help key = %q, want %q", got, "p")
	}
}
