// Package grocery enriches shopping list items with store categories using
// keyword matching. No network, no ML, good enough for a family list.
package grocery

import "strings"

// Categories in rough store-walk order. "Other" is always last.
var Categories = []string{
	"Produce",
	"Bakery",
	"Meat & Seafood",
	"Dairy",
	"Frozen",
	"Pantry",
	"Snacks",
	"Beverages",
	"Household",
	"Personal Care",
	"Other",
}

// Categorize returns the category for an item name. Matching is case
// insensitive: exact word match first (with a naive plural fallback), then
// substring match, then "Other".
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return "Other"
	}

	if cat, ok := exact[name]; ok {
		return cat
	}
	if singular, ok := strings.CutSuffix(name, "s"); ok {
		if cat, ok := exact[singular]; ok {
			return cat
		}
	}

	for _, m := range substringMatches {
		if strings.Contains(name, m.keyword) {
			return m.category
		}
	}
	return "Other"
}

var keywords = map[string][]string{
	"Produce": {
		"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato",
		"potato", "potatoes", "onion", "garlic", "lettuce", "spinach", "kale",
		"broccoli", "carrot", "celery", "cucumber", "pepper", "mushroom",
		"corn", "grape", "strawberries", "blueberries", "raspberries",
		"watermelon", "pineapple", "mango", "peach", "pear", "cilantro",
		"basil", "parsley", "ginger", "zucchini", "asparagus", "green beans",
	},
	"Bakery": {
		"bread", "bagel", "croissant", "muffin", "tortilla", "bun", "roll",
		"baguette", "pita", "donut",
	},
	"Meat & Seafood": {
		"chicken", "beef", "pork", "turkey", "ham", "bacon", "sausage",
		"steak", "ground beef", "salmon", "tuna", "shrimp", "fish", "hot dog",
	},
	"Dairy": {
		"milk", "cheese", "butter", "yogurt", "cream", "sour cream",
		"cream cheese", "cottage cheese", "egg", "half and half",
	},
	"Frozen": {
		"ice cream", "frozen pizza", "frozen vegetables", "popsicle", "waffles",
	},
	"Pantry": {
		"rice", "pasta", "flour", "sugar", "salt", "oil", "olive oil",
		"vinegar", "cereal", "oatmeal", "peanut butter", "jelly", "honey",
		"soup", "beans", "lentils", "quinoa", "spice", "ketchup", "mustard",
		"mayo", "mayonnaise", "salsa", "soy sauce",
	},
	"Snacks": {
		"chips", "crackers", "pretzels", "popcorn", "cookies", "candy",
		"chocolate", "granola bar", "trail mix", "nuts",
	},
	"Beverages": {
		"coffee", "tea", "juice", "soda", "water", "sparkling water", "beer",
		"wine", "kombucha", "lemonade",
	},
	"Household": {
		"paper towels", "toilet paper", "dish soap", "laundry detergent",
		"trash bags", "sponges", "foil", "plastic wrap", "batteries",
		"light bulb",
	},
	"Personal Care": {
		"shampoo", "conditioner", "toothpaste", "toothbrush", "deodorant",
		"soap", "lotion", "razor", "floss", "sunscreen",
	},
}

// exact is the flattened keyword index, built once at startup.
var exact = func() map[string]string {
	idx := make(map[string]string)
	for cat, words := range keywords {
		for _, w := range words {
			idx[w] = cat
		}
	}
	return idx
}()

// substringMatches catches qualified items ("boneless chicken thighs").
// Ordered most specific first; the first hit wins.
var substringMatches = []struct {
	keyword  string
	category string
}{
	{"ice cream", "Frozen"},
	{"frozen", "Frozen"},
	{"chicken", "Meat & Seafood"},
	{"beef", "Meat & Seafood"},
	{"pork", "Meat & Seafood"},
	{"turkey", "Meat & Seafood"},
	{"salmon", "Meat & Seafood"},
	{"shrimp", "Meat & Seafood"},
	{"fish", "Meat & Seafood"},
	{"cheese", "Dairy"},
	{"yogurt", "Dairy"},
	{"milk", "Dairy"},
	{"bread", "Bakery"},
	{"tortilla", "Bakery"},
	{"spinach", "Produce"},
	{"lettuce", "Produce"},
	{"tomato", "Produce"},
	{"pepper", "Produce"},
	{"juice", "Beverages"},
	{"soda", "Beverages"},
	{"coffee", "Beverages"},
	{"water", "Beverages"},
	{"canned", "Pantry"},
	{"sauce", "Pantry"},
	{"bean", "Pantry"},
	{"pasta", "Pantry"},
	{"chip", "Snacks"},
	{"cookie", "Snacks"},
	{"soap", "Household"},
	{"detergent", "Household"},
	{"paper", "Household"},
	{"shampoo", "Personal Care"},
	{"toothpaste", "Personal Care"},
}
