package secretselect

import "testing"

func TestExpandPattern(t *testing.T) {
	names := []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "DB_PASSWORD", "API_KEY", "CONFIG"}

	tests := []struct {
		name     string
		pattern  string
		expected []string
		wantErr  bool
	}{
		{name: "exact match", pattern: "API_KEY", expected: []string{"API_KEY"}},
		{name: "wildcard prefix", pattern: "AWS_*", expected: []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY"}},
		{name: "wildcard suffix", pattern: "*_KEY", expected: []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "API_KEY"}},
		{name: "question mark", pattern: "DB_????????", expected: []string{"DB_PASSWORD"}},
		{name: "match all", pattern: "*", expected: names},
		{name: "no match glob", pattern: "NONEXISTENT_*", wantErr: true},
		{name: "no match exact", pattern: "NONEXISTENT", wantErr: true},
		{name: "invalid pattern", pattern: "[invalid", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ExpandPattern(tc.pattern, names)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tc.expected) {
				t.Fatalf("got %v, want %v", result, tc.expected)
			}
			for _, want := range tc.expected {
				found := false
				for _, got := range result {
					if got == want {
						found = true
					}
				}
				if !found {
					t.Errorf("missing expected name %s in %v", want, result)
				}
			}
		})
	}
}

func TestExpandPatterns(t *testing.T) {
	names := []string{"a", "b", "c", "ab", "bc"}

	result, err := ExpandPatterns([]string{"a*", "ab"}, names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %v, want 2 unique names", result)
	}
}

func TestSortNames(t *testing.T) {
	input := []string{"z", "a", "m"}
	result := SortNames(input)
	if input[0] != "z" {
		t.Fatal("original slice was modified")
	}
	want := []string{"a", "m", "z"}
	for i, v := range want {
		if result[i] != v {
			t.Fatalf("position %d: got %s, want %s", i, result[i], v)
		}
	}
}
