package main

import (
	"reflect"
	"testing"
)

func TestComputeDiffIdentical(t *testing.T) {
	a := map[string]string{"KEY": "value"}
	d := computeDiff(a, a)
	if len(d.added) != 0 || len(d.removed) != 0 || len(d.changed) != 0 {
		t.Fatalf("computeDiff(identical) = %+v, want only unchanged entries", d)
	}
	if !reflect.DeepEqual(d.unchanged, []string{"KEY"}) {
		t.Fatalf("unchanged = %v, want [KEY]", d.unchanged)
	}
}

func TestComputeDiffMixedChanges(t *testing.T) {
	source := map[string]string{"KEEP": "same", "MODIFY": "old", "REMOVE": "gone"}
	target := map[string]string{"KEEP": "same", "MODIFY": "new", "ADD": "fresh"}

	d := computeDiff(source, target)
	if !reflect.DeepEqual(d.added, []string{"ADD"}) {
		t.Fatalf("added = %v, want [ADD]", d.added)
	}
	if !reflect.DeepEqual(d.removed, []string{"REMOVE"}) {
		t.Fatalf("removed = %v, want [REMOVE]", d.removed)
	}
	if !reflect.DeepEqual(d.changed, []string{"MODIFY"}) {
		t.Fatalf("changed = %v, want [MODIFY]", d.changed)
	}
	if !reflect.DeepEqual(d.unchanged, []string{"KEEP"}) {
		t.Fatalf("unchanged = %v, want [KEEP]", d.unchanged)
	}
}

func TestComputeDiffEmptyVaults(t *testing.T) {
	d := computeDiff(map[string]string{}, map[string]string{})
	if len(d.added) != 0 || len(d.removed) != 0 || len(d.changed) != 0 || len(d.unchanged) != 0 {
		t.Fatalf("computeDiff(empty, empty) = %+v, want all-empty", d)
	}
}

func TestComputeDiffResultsAreSorted(t *testing.T) {
	source := map[string]string{"Z_KEY": "v", "A_KEY": "v"}
	target := map[string]string{"M_KEY": "v", "B_KEY": "v"}

	d := computeDiff(source, target)
	if !reflect.DeepEqual(d.added, []string{"B_KEY", "M_KEY"}) {
		t.Fatalf("added = %v, want sorted [B_KEY M_KEY]", d.added)
	}
	if !reflect.DeepEqual(d.removed, []string{"A_KEY", "Z_KEY"}) {
		t.Fatalf("removed = %v, want sorted [A_KEY Z_KEY]", d.removed)
	}
}
