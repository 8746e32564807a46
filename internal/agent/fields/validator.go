package fields

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/clubchat-core/server/internal/agent/model"
	logx "github.com/clubchat-core/server/pkg/logger"
)

const (
	NameMinLen        = 3
	NameMaxLen        = 100
	DescriptionMinLen = 200
	DescriptionMaxLen = 2000
	PhoneMinDigits    = 10
	PhoneMaxDigits    = 15

	descriptionMinSentences     = 2
	descriptionMinDistinctRunes = 10
)

var (
	emailShape = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	// Soft signals for machine-made addresses.
	autogeneratedEmail = []*regexp.Regexp{
		regexp.MustCompile(`^\d{5,}`),
		regexp.MustCompile(`^[a-z]{1,2}\d{6,}@`),
		regexp.MustCompile(`^[a-z0-9]{20,}@`),
		regexp.MustCompile(`^(test|temp|fake|noreply|no-reply)\d*@`),
	}

	phoneAllowed = regexp.MustCompile(`^[0-9+\-() .]+$`)
)

// ForbiddenNameWords are reserved words a club name must not contain.
var ForbiddenNameWords = []string{
	"admin", "administrator", "moderator", "system", "root", "support", "official",
	"staff", "null", "undefined", "test",
	"админ", "администратор", "модератор", "система", "поддержка", "официальный",
}

// DisposableEmailDomains are throwaway mail providers rejected for club contacts.
var DisposableEmailDomains = []string{
	"mailinator.com", "10minutemail.com", "tempmail.com", "temp-mail.org",
	"guerrillamail.com", "yopmail.com", "trashmail.com", "throwawaymail.com",
	"getnada.com", "dispostable.com", "sharklasers.com", "maildrop.cc",
}

// KazakhstanOperatorCodes are the mobile prefixes after country code 7
// allocated to Kazakh operators. The list ages; mismatches only warn.
var KazakhstanOperatorCodes = []string{
	"700", "701", "702", "705", "706", "707", "708", "747", "771", "775", "776", "777", "778",
}

// Validator holds the stateless per-field rules.
type Validator struct {
	catalog *Catalog
	email   *validator.Validate
}

// NewValidator builds a Validator using catalog, or the default catalog when nil.
func NewValidator(catalog *Catalog) *Validator {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Validator{catalog: catalog, email: validator.New()}
}

// Catalog exposes the category list used by the validator.
func (v *Validator) Catalog() *Catalog { return v.catalog }

// Name checks the syntactic name rules. Uniqueness against stored clubs is
// checked by the duplicate resolver.
func (v *Validator) Name(name string) model.ValidationResult {
	res := model.NewValidationResult()
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n < NameMinLen {
		res.Fail(fmt.Sprintf("Name is too short: minimum %d characters.", NameMinLen))
		return res
	}
	if n > NameMaxLen {
		res.Fail(fmt.Sprintf("Name is too long: maximum %d characters (got %d).", NameMaxLen, n))
		return res
	}

	letters, special := 0, 0
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r), unicode.IsSpace(r):
		default:
			special++
		}
	}
	if letters == 0 {
		res.Fail("Name must contain at least one letter.")
	}
	if special*2 > n {
		res.Fail("Name contains too many special characters.")
	}
	if w, ok := containsForbiddenWord(name); ok {
		res.Fail(fmt.Sprintf("Name must not contain the reserved word %q.", w))
	}
	return res
}

// Description checks length, sentence structure and character variety.
func (v *Validator) Description(text string) model.ValidationResult {
	res := model.NewValidationResult()
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)

	if n < DescriptionMinLen {
		missing := DescriptionMinLen - n
		res.Fail(fmt.Sprintf("Description is too short: need %d more %s (minimum %d).", missing, plural(missing, "character", "characters"), DescriptionMinLen))
	}
	if n > DescriptionMaxLen {
		res.Fail(fmt.Sprintf("Description is too long: maximum %d characters (got %d).", DescriptionMaxLen, n))
	}
	if c := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"); c < descriptionMinSentences {
		res.Fail(fmt.Sprintf("Description should have at least %d sentences.", descriptionMinSentences))
	}
	distinct := map[rune]struct{}{}
	for _, r := range text {
		if !unicode.IsSpace(r) {
			distinct[r] = struct{}{}
		}
	}
	if len(distinct) < descriptionMinDistinctRunes {
		res.Fail("Description looks like repeated characters; please describe the club in your own words.")
	}
	if res.IsValid && n > DescriptionMaxLen*3/4 {
		res.Warn("Description is long; the summary will show a shortened preview.")
	}
	return res
}

// Category resolves input against the catalog. The canonical name is
// returned on success; on failure the error lists the valid set.
func (v *Validator) Category(input string) (string, model.ValidationResult) {
	res := model.NewValidationResult()
	if name, ok := v.catalog.Match(input); ok {
		return name, res
	}
	res.Fail(UnknownCategoryMessage(v.catalog))
	return "", res
}

// UnknownCategoryMessage lists the valid categories verbatim.
func UnknownCategoryMessage(c *Catalog) string {
	return "Unknown category. Choose one of: " + strings.Join(c.Names(), ", ") + "."
}

// Email checks shape and provider. Addresses that look machine-made only warn.
func (v *Validator) Email(email string) model.ValidationResult {
	res := model.NewValidationResult()
	email = strings.TrimSpace(email)

	if !emailShape.MatchString(email) || v.email.Var(email, "required,email") != nil {
		res.Fail("Please enter a valid email address, for example club@example.kz.")
		return res
	}

	lower := strings.ToLower(email)
	domain := lower[strings.LastIndex(lower, "@")+1:]
	for _, d := range DisposableEmailDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			logx.Security("disposable_email").Str("domain", domain).Msg("email rejected")
			res.Fail("Disposable email addresses are not accepted; please use a permanent address.")
			return res
		}
	}
	for _, p := range autogeneratedEmail {
		if p.MatchString(lower) {
			logx.Security("autogenerated_email").Str("domain", domain).Msg("email looks autogenerated")
			res.Warn("This address looks auto-generated; make sure members can reach it.")
			break
		}
	}
	return res
}

// Phone normalizes the candidate to +digits and checks its length.
// An unknown operator prefix is logged, never rejected.
func (v *Validator) Phone(candidate string) (string, model.ValidationResult) {
	res := model.NewValidationResult()
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || !phoneAllowed.MatchString(candidate) {
		res.Fail("Phone number may contain only digits, spaces, +, - and brackets.")
		return "", res
	}

	var b strings.Builder
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < PhoneMinDigits || len(digits) > PhoneMaxDigits {
		res.Fail(fmt.Sprintf("Phone number must have %d to %d digits (got %d).", PhoneMinDigits, PhoneMaxDigits, len(digits)))
		return "", res
	}
	// Domestic 8-prefixed numbers share the +7 plan.
	if len(digits) == 11 && digits[0] == '8' && !strings.HasPrefix(candidate, "+") {
		digits = "7" + digits[1:]
	}

	if len(digits) == 11 && digits[0] == '7' {
		code := digits[1:4]
		if code[0] != '9' && !containsString(KazakhstanOperatorCodes, code) {
			logx.Warn().Str("component", "phone_validator").Str("operator_code", code).Msg("unrecognized operator prefix")
		}
	}
	return "+" + digits, res
}

// Field validates value for f and returns the normalized value.
func (v *Validator) Field(f model.Field, value string) (string, model.ValidationResult) {
	switch f {
	case model.FieldName:
		value = strings.TrimSpace(value)
		return value, v.Name(value)
	case model.FieldCategory:
		return v.Category(value)
	case model.FieldDescription:
		value = strings.TrimSpace(value)
		return value, v.Description(value)
	case model.FieldEmail:
		value = strings.TrimSpace(value)
		return value, v.Email(value)
	case model.FieldPhone:
		return v.Phone(value)
	}
	res := model.NewValidationResult()
	res.Fail(fmt.Sprintf("Unknown field %q.", f))
	return "", res
}

// Draft re-validates every field and returns the per-field errors.
func (v *Validator) Draft(d model.Draft) (model.Draft, map[model.Field]model.ValidationResult) {
	out := model.Draft{}
	failed := map[model.Field]model.ValidationResult{}
	for _, f := range model.Fields {
		val, res := v.Field(f, d.Get(f))
		if !res.IsValid {
			failed[f] = res
			continue
		}
		out.Set(f, val)
	}
	return out, failed
}

func containsForbiddenWord(name string) (string, bool) {
	words := tokenize(name)
	for _, w := range ForbiddenNameWords {
		if _, ok := words[w]; ok {
			return w, true
		}
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
