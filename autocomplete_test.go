package cordsearch

import "testing"

func TestBuildAutocompleteOrdersByScoreDescTermAsc(t *testing.T) {
	ac := buildAutocomplete(map[string]float64{
		"corona":    5,
		"coronary":  5,
		"coronavir": 3,
	})
	got := ac.Suggest("coro", 10)
	want := []string{"corona", "coronary", "coronavir"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSuggestPreservesPrecedingText(t *testing.T) {
	ac := buildAutocomplete(map[string]float64{"vaccine": 1})
	got := ac.Suggest("the new vacc", 5)
	if len(got) != 1 || got[0] != "the new vaccine" {
		t.Fatalf("expected prefix preserved, got %v", got)
	}
}

func TestSuggestUnknownPrefixReturnsEmpty(t *testing.T) {
	ac := buildAutocomplete(map[string]float64{"vaccine": 1})
	if got := ac.Suggest("zzz", 5); len(got) != 0 {
		t.Errorf("expected no suggestions for unknown prefix, got %v", got)
	}
}

func TestSuggestNoTrailingTokenReturnsEmpty(t *testing.T) {
	ac := buildAutocomplete(map[string]float64{"vaccine": 1})
	if got := ac.Suggest("  ?! ", 5); len(got) != 0 {
		t.Errorf("expected no suggestions when raw has no alnum run, got %v", got)
	}
}

func TestSuggestLimitClamping(t *testing.T) {
	scores := map[string]float64{}
	for i := 0; i < 15; i++ {
		scores["x"+string(rune('a'+i))] = float64(15 - i)
	}
	ac := buildAutocomplete(scores)
	if got := ac.Suggest("x", 100); len(got) > 10 {
		t.Errorf("expected suggestions capped at 10, got %d", len(got))
	}
	if got := ac.Suggest("x", 0); len(got) != 1 {
		t.Errorf("expected limit clamped up to 1, got %d", len(got))
	}
}

func TestBuildAutocompleteExcludesShortTerms(t *testing.T) {
	ac := buildAutocomplete(map[string]float64{"a": 10, "ab": 5})
	if got := ac.Suggest("a", 10); len(got) != 1 || got[0] != "ab" {
		t.Errorf("expected single-character terms excluded, got %v", got)
	}
}
