package cordsearch

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Hello, World!", []string{"hello", "world"}},
		{"COVID-19 spike-protein", []string{"covid", "19", "spike", "protein"}},
		{"  leading and trailing  ", []string{"leading", "and", "trailing"}},
		{"already_lower", []string{"already", "lower"}},
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"the", "a", "an", "and", "of", "is"} {
		if !isStopword(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"coronavirus", "spike", "vaccine"} {
		if isStopword(w) {
			t.Errorf("expected %q to not be a stopword", w)
		}
	}
}

func TestQueryTerms(t *testing.T) {
	got := queryTerms("the spread of the coronavirus in humans")
	want := []string{"spread", "coronavirus", "humans"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("queryTerms = %v, want %v", got, want)
	}
}
