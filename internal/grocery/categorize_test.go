package grocery

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"ice cream", "Frozen"},
		{"coffee", "Beverages"},
		{"chips", "Snacks"},
		{"paper towels", "Household"},
		{"shampoo", "Personal Care"},
		{"apple", "Produce"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizePluralFallback(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"eggs", "Dairy"},
		{"bagels", "Bakery"},
		{"apples", "Produce"},
		{"lemons", "Produce"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"boneless chicken thighs", "Meat & Seafood"},
		{"whole wheat bread", "Bakery"},
		{"organic baby spinach", "Produce"},
		{"sparkling water bottles", "Beverages"},
		{"canned black beans", "Pantry"},
		{"shredded cheddar cheese", "Dairy"},
		{"frozen dumplings", "Frozen"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeCaseAndWhitespace(t *testing.T) {
	if got := Categorize("  MILK "); got != "Dairy" {
		t.Errorf("Categorize with case/whitespace = %q, want Dairy", got)
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "mystery item", "quantum flux capacitor"} {
		if got := Categorize(input); got != "Other" {
			t.Errorf("Categorize(%q) = %q, want Other", input, got)
		}
	}
}

func TestCategoriesEndsWithOther(t *testing.T) {
	if Categories[len(Categories)-1] != "Other" {
		t.Error("Other must be the final category")
	}
	seen := make(map[string]bool)
	for _, c := range Categories {
		if seen[c] {
			t.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
	for cat := range keywords {
		if !seen[cat] {
			t.Errorf("keyword category %q missing from Categories", cat)
		}
	}
}
