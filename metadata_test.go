package cordsearch

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMetadataCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMetadataIndexAndFetch(t *testing.T) {
	csv := "cord_uid,title,url,publish_time,authors\n" +
		"uid1,First Paper,http://a.example;http://b.example,2020-03-01,\"Smith, John; Doe, Jane\"\n" +
		"uid2,Second Paper,http://c.example,2020-04-01,Lee\n"
	path := writeMetadataCSV(t, csv)

	mi, err := loadMetadataIndex(path)
	if err != nil {
		t.Fatalf("loadMetadataIndex: %v", err)
	}

	m1, ok, err := mi.Fetch("uid1")
	if err != nil || !ok {
		t.Fatalf("Fetch(uid1): ok=%v err=%v", ok, err)
	}
	if m1.Title != "First Paper" {
		t.Errorf("expected title 'First Paper', got %q", m1.Title)
	}
	if m1.URL != "http://a.example" {
		t.Errorf("expected only first URL before ';', got %q", m1.URL)
	}
	if m1.Author != "Smith et al." {
		t.Errorf("expected 'Smith et al.', got %q", m1.Author)
	}

	m2, ok, err := mi.Fetch("uid2")
	if err != nil || !ok {
		t.Fatalf("Fetch(uid2): ok=%v err=%v", ok, err)
	}
	if m2.Author != "Lee et al." {
		t.Errorf("expected single-token surname 'Lee et al.', got %q", m2.Author)
	}
}

func TestFetchLastRowWithoutTrailingNewline(t *testing.T) {
	// metadata.csv files aren't guaranteed to end in a newline; the last
	// row's stored Length assumes one anyway, so Fetch must tolerate the
	// resulting short read instead of surfacing it as io.EOF.
	csv := "cord_uid,title\nuid1,First Paper\nuid2,Last Paper"
	path := writeMetadataCSV(t, csv)

	mi, err := loadMetadataIndex(path)
	if err != nil {
		t.Fatalf("loadMetadataIndex: %v", err)
	}
	m, ok, err := mi.Fetch("uid2")
	if err != nil {
		t.Fatalf("Fetch(uid2): unexpected error %v", err)
	}
	if !ok {
		t.Fatal("expected uid2 to be found")
	}
	if m.Title != "Last Paper" {
		t.Errorf("expected title 'Last Paper', got %q", m.Title)
	}
}

func TestFetchUnknownUID(t *testing.T) {
	path := writeMetadataCSV(t, "cord_uid,title\nuid1,Title\n")
	mi, err := loadMetadataIndex(path)
	if err != nil {
		t.Fatalf("loadMetadataIndex: %v", err)
	}
	_, ok, err := mi.Fetch("nope")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ok {
		t.Error("expected ok=false for an unknown cord_uid")
	}
}

func TestLoadMetadataIndexKeepsFirstOccurrence(t *testing.T) {
	csv := "cord_uid,title\nuid1,First\nuid1,Duplicate\n"
	path := writeMetadataCSV(t, csv)
	mi, err := loadMetadataIndex(path)
	if err != nil {
		t.Fatalf("loadMetadataIndex: %v", err)
	}
	m, ok, err := mi.Fetch("uid1")
	if err != nil || !ok {
		t.Fatalf("Fetch: ok=%v err=%v", ok, err)
	}
	if m.Title != "First" {
		t.Errorf("expected first occurrence to win, got %q", m.Title)
	}
}

func TestSplitCSVRowUnescapesDoubledQuotes(t *testing.T) {
	fields := splitCSVRow(`a,"say ""hello""",c`)
	want := []string{"a", `say "hello"`, "c"}
	if len(fields) != len(want) {
		t.Fatalf("expected %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: want %q, got %q", i, want[i], fields[i])
		}
	}
}

func TestSplitCSVRowHandlesCommaInsideQuotedField(t *testing.T) {
	fields := splitCSVRow(`uid1,"Smith, John",2020`)
	want := []string{"uid1", "Smith, John", "2020"}
	if len(fields) != len(want) {
		t.Fatalf("expected %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: want %q, got %q", i, want[i], fields[i])
		}
	}
}

func TestFirstAuthorEtAlWithParentheticalRomanization(t *testing.T) {
	// The parenthesized form replaces the pre-parenthesis text entirely,
	// and since it has no comma its surname is taken as its last token.
	got := firstAuthorEtAl("Zhang, Wei (Wei Zhang); Liu, Yang")
	if got != "Zhang et al." {
		t.Errorf("expected surname derived from the parenthesized form, got %q", got)
	}
}

func TestFirstAuthorEtAlEmpty(t *testing.T) {
	if got := firstAuthorEtAl(""); got != "" {
		t.Errorf("expected empty string for no authors, got %q", got)
	}
}

func TestFirstAuthorEtAlNoComma(t *testing.T) {
	got := firstAuthorEtAl("Jane Doe")
	if got != "Doe et al." {
		t.Errorf("expected last token as surname, got %q", got)
	}
}
