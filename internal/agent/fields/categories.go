package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is one entry of the fixed club category list.
type Category struct {
	Name     string
	Aliases  []string
	Keywords []string
}

// Catalog is an ordered, read-only category list.
type Catalog struct {
	categories []Category
}

// DefaultCategories is the category list offered to club founders.
var DefaultCategories = []Category{
	{Name: "Sports", Aliases: []string{"спорт", "sport"}, Keywords: []string{"football", "футбол", "basketball", "баскетбол", "volleyball", "волейбол", "tennis", "теннис", "running", "бег", "fitness", "фитнес", "gym", "yoga", "йога", "swimming", "плавание"}},
	{Name: "Arts", Aliases: []string{"искусство", "art"}, Keywords: []string{"painting", "живопись", "drawing", "рисование", "theater", "theatre", "театр", "dance", "танцы", "photography", "фотография", "фото", "design", "дизайн"}},
	{Name: "Music", Aliases: []string{"музыка"}, Keywords: []string{"guitar", "гитара", "choir", "хор", "band", "группа", "piano", "фортепиано", "singing", "вокал", "orchestra", "оркестр"}},
	{Name: "Science", Aliases: []string{"наука"}, Keywords: []string{"physics", "физика", "chemistry", "химия", "biology", "биология", "math", "математика", "astronomy", "астрономия", "research", "исследования"}},
	{Name: "Technology", Aliases: []string{"технологии", "tech"}, Keywords: []string{"programming", "программирование", "coding", "code", "it", "robotics", "робототехника", "ai", "computers", "компьютеры", "gamedev", "software", "hackathon", "хакатон"}},
	{Name: "Education", Aliases: []string{"образование"}, Keywords: []string{"languages", "language", "english", "английский", "study", "учеба", "tutoring", "books", "книги", "reading", "чтение", "debate", "дебаты", "lectures", "лекции"}},
	{Name: "Games", Aliases: []string{"игры"}, Keywords: []string{"chess", "шахматы", "board", "настольные", "esports", "киберспорт", "cards", "quiz", "квиз", "mafia", "мафия"}},
	{Name: "Volunteering", Aliases: []string{"волонтерство", "волонтёрство"}, Keywords: []string{"charity", "благотворительность", "ecology", "экология", "community", "сообщество", "help", "помощь", "animals", "животные"}},
	{Name: "Business", Aliases: []string{"бизнес"}, Keywords: []string{"startup", "стартап", "entrepreneurship", "предпринимательство", "finance", "финансы", "marketing", "маркетинг", "investing", "инвестиции"}},
	{Name: "Travel", Aliases: []string{"путешествия"}, Keywords: []string{"hiking", "поход", "походы", "tourism", "туризм", "camping", "кемпинг", "outdoors", "mountains", "горы"}},
}

// NewCatalog returns a catalog over cats, or DefaultCategories when cats is empty.
func NewCatalog(cats ...Category) *Catalog {
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	cp := make([]Category, len(cats))
	copy(cp, cats)
	return &Catalog{categories: cp}
}

// Categories returns the catalog entries in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Names returns the canonical category names in display order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat.Name)
	}
	return out
}

// Match resolves input by case-insensitive substring in either direction
// against each category's name and aliases. The input-inside-name direction
// needs at least three characters so "a" does not match "Arts"; the
// name-inside-input direction is checked per word so "party" is not "Arts".
func (c *Catalog) Match(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	short := utf8.RuneCountInString(in) < 3
	words := tokenize(in)
	for _, cat := range c.categories {
		for _, label := range append([]string{cat.Name}, cat.Aliases...) {
			l := strings.ToLower(label)
			if in == l || (!short && strings.Contains(l, in)) || hasWordPrefix(words, l) {
				return cat.Name, true
			}
		}
	}
	return "", false
}

func hasWordPrefix(words map[string]struct{}, prefix string) bool {
	for w := range words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

// MatchKeywords returns the category sharing the most keywords with input.
// Ties go to the earlier category; zero overlap is no match.
func (c *Catalog) MatchKeywords(input string) (string, int) {
	words := tokenize(input)
	if len(words) == 0 {
		return "", 0
	}
	best, bestHits := "", 0
	for _, cat := range c.categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if _, ok := words[strings.ToLower(kw)]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = cat.Name, hits
		}
	}
	return best, bestHits
}

func tokenize(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[w] = struct{}{}
	}
	return out
}
