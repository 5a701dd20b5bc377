package assist

import (
	"strings"
	"testing"
)

func TestSelectByKeywords(t *testing.T) {
	tests := []struct {
		prompt string
		want   []string
	}{
		{"make it energetic", energeticFilters},
		{"FAST cuts please", energeticFilters},
		{"chill evening vibes", chillFilters},
		{"keep it Calm", chillFilters},
		{"just do something", defaultFilters},
		{"", defaultFilters},
	}

	for _, tt := range tests {
		got := SelectByKeywords(tt.prompt)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("SelectByKeywords(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestSelectByKeywordsReturnsCopy(t *testing.T) {
	got := SelectByKeywords("energetic")
	got[2] = "mutated"

	again := SelectByKeywords("energetic")
	if again[2] == "mutated" {
		t.Fatal("preset slice was mutated through a returned copy")
	}
}

func TestEnsureThree(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{"hue=s=1", "hue=s=1", "hue=s=1"}},
		{"one", []string{"setpts=0.9*PTS"}, []string{"setpts=0.9*PTS", "hue=s=1", "hue=s=1"}},
		{"two", []string{"setpts=0.9*PTS", "hue=s=1.2"}, []string{"setpts=0.9*PTS", "hue=s=1.2", "hue=s=1"}},
		{"exact", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"excess", []string{"a", "b", "c", "d", "e"}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsureThree(tt.in)
			if len(got) != 3 {
				t.Fatalf("got %d filters, want 3", len(got))
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("EnsureThree(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnsureThreeDoesNotMutateInput(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	_ = EnsureThree(in)
	if len(in) != 4 {
		t.Fatal("input slice was truncated")
	}
}
