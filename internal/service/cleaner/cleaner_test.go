package cleaner

import (
	"testing"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"empty":            {"", ""},
		"single word":      {"jane", "Jane"},
		"full name":        {"jane doe", "Jane Doe"},
		"already cased":    {"Jane Doe", "Jane Doe"},
		"all caps":         {"ROBERTO GARCIA", "Roberto Garcia"},
		"accented":         {"maría lópez", "María López"},
		"surrounding ws":   {"  jane doe  ", "Jane Doe"},
		"double space":     {"jane  doe", "Jane  Doe"},
		"digits untouched": {"agente 007", "Agente 007"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Fatalf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{"jane doe", "JANE  DOE", " maría de la cruz ", "", "x"}
	for _, input := range inputs {
		once := NormalizeName(input)
		if twice := NormalizeName(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"empty":          {"", ""},
		"plain digits":   {"5551234567", "5551234567"},
		"formatted":      {"(555) 123-4567", "5551234567"},
		"country prefix": {"+52 1 555 123 4567", "5215551234567"},
		"letters":        {"ext. 12 abc 34", "1234"},
		"no digits":      {"n/a", ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsDuplicate_EmailSymmetry(t *testing.T) {
	a := entity.Lead{Name: "A", Email: "jane@x.com"}
	b := entity.Lead{Name: "B", Email: "jane@x.com"}

	if !IsDuplicate(a, []entity.Lead{b}) {
		t.Fatalf("expected a to duplicate b")
	}
	if !IsDuplicate(b, []entity.Lead{a}) {
		t.Fatalf("expected b to duplicate a")
	}
}

func TestIsDuplicate_PhoneMatch(t *testing.T) {
	candidate := entity.Lead{Phone: "5551234567"}
	existing := []entity.Lead{{Phone: "5550000000"}, {Phone: "5551234567"}}
	if !IsDuplicate(candidate, existing) {
		t.Fatalf("expected phone duplicate to be detected")
	}
}

func TestIsDuplicate_EmptyFieldsNeverMatch(t *testing.T) {
	a := entity.Lead{Name: "Same Name"}
	b := entity.Lead{Name: "Same Name"}
	if IsDuplicate(a, []entity.Lead{b}) {
		t.Fatalf("two all-empty leads must not be duplicates")
	}

	candidate := entity.Lead{Email: "", Phone: ""}
	if IsDuplicate(candidate, []entity.Lead{{Email: "", Phone: ""}}) {
		t.Fatalf("empty fields must never count as a match")
	}
}

func TestIsDuplicate_NoMatch(t *testing.T) {
	candidate := entity.Lead{Email: "new@x.com", Phone: "111"}
	existing := []entity.Lead{{Email: "old@x.com", Phone: "222"}}
	if IsDuplicate(candidate, existing) {
		t.Fatalf("expected no duplicate")
	}
}

func TestDuplicateIndex_MatchesLinearScan(t *testing.T) {
	existing := []entity.Lead{
		{Email: "a@x.com", Phone: "111"},
		{Email: "", Phone: "222"},
		{Email: "c@x.com", Phone: ""},
	}
	ix := NewDuplicateIndex(existing)

	candidates := []entity.Lead{
		{Email: "a@x.com"},
		{Phone: "222"},
		{Email: "c@x.com", Phone: "999"},
		{Email: "new@x.com", Phone: "333"},
		{},
	}
	for _, candidate := range candidates {
		want := IsDuplicate(candidate, existing)
		if got := ix.Seen(candidate.Email, candidate.Phone); got != want {
			t.Fatalf("index disagrees with linear scan for %+v: got %v, want %v", candidate, got, want)
		}
	}
}

func TestDuplicateIndex_AddWithinBatch(t *testing.T) {
	ix := NewDuplicateIndex(nil)
	if ix.Seen("first@x.com", "111") {
		t.Fatalf("empty index should not match")
	}
	ix.Add("first@x.com", "111")
	if !ix.Seen("first@x.com", "") {
		t.Fatalf("expected email added mid-batch to match")
	}
	if !ix.Seen("", "111") {
		t.Fatalf("expected phone added mid-batch to match")
	}
	ix.Add("", "")
	if ix.Seen("", "") {
		t.Fatalf("empty keys must not be indexed")
	}
}
