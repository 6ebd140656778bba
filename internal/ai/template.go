package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xelth-com/huissierpro/internal/models"
)

var (
	requerantLine    = regexp.MustCompile(`(?im)^[ \t]*REQUÉRANT[ \t]*:?[ \t]*(.*?)[ \t]*$`)
	destinataireLine = regexp.MustCompile(`(?im)^[ \t]*DESTINATAIRE[ \t]*:?[ \t]*(.*?)[ \t]*$`)
	notesLabel       = regexp.MustCompile(`(?i)NOTES DE TERRAIN[ \t]*:[ \t]*`)
	amountPattern    = regexp.MustCompile(`\d+(?:[. ]\d{3})*`)
)

// Default party names used when the facts do not name them.
const (
	DefaultRequerant    = "LE CRÉANCIER"
	DefaultDestinataire = "LE DÉBITEUR"
)

// TemplateGenerator drafts acts offline from a fixed French template.
type TemplateGenerator struct {
	City string
	Now  func() time.Time
}

// NewTemplateGenerator creates an offline generator signing acts in city.
func NewTemplateGenerator(city string) *TemplateGenerator {
	if city == "" {
		city = "Brazzaville"
	}
	return &TemplateGenerator{City: city, Now: time.Now}
}

// Facts are the pieces the template extracts from raw notes.
type Facts struct {
	Requerant    string
	Destinataire string
	Amount       int64
	Notes        string
}

// ParseFacts pulls the parties, the first amount and the remaining notes out
// of raw field notes.
func ParseFacts(raw string) Facts {
	f := Facts{Requerant: DefaultRequerant, Destinataire: DefaultDestinataire}

	if m := requerantLine.FindStringSubmatch(raw); m != nil && m[1] != "" {
		f.Requerant = m[1]
	}
	if m := destinataireLine.FindStringSubmatch(raw); m != nil && m[1] != "" {
		f.Destinataire = m[1]
	}

	notes := requerantLine.ReplaceAllString(raw, "")
	notes = destinataireLine.ReplaceAllString(notes, "")
	notes = notesLabel.ReplaceAllString(notes, "")
	f.Notes = strings.TrimSpace(notes)

	if m := amountPattern.FindString(f.Notes); m != "" {
		digits := strings.NewReplacer(".", "", " ", "").Replace(m)
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			f.Amount = n
		}
	}
	return f
}

// Generate renders the template for category.
func (g *TemplateGenerator) Generate(ctx context.Context, facts string, category models.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(facts) == "" {
		return "", fmt.Errorf("%w: no facts provided", ErrGenerationFailed)
	}

	f := ParseFacts(facts)
	now := g.Now()
	date := FrenchDate(now)
	at := now.Format("15h04")

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n---\n\n", strings.ToUpper(string(category)))
	fmt.Fprintf(&b, "**À la requête de :** **%s**, ci-après LE REQUÉRANT\n\n", strings.ToUpper(f.Requerant))
	fmt.Fprintf(&b, "**À :** **%s**, ci-après LE DESTINATAIRE\n\n", strings.ToUpper(f.Destinataire))
	if f.Notes != "" {
		fmt.Fprintf(&b, "**FAITS :**\n\n%s\n\n", f.Notes)
	}

	switch category {
	case models.CategorySommationPayer, models.CategoryCommandement:
		fmt.Fprintf(&b, "**PAR CES PRÉSENTES,** fait au DESTINATAIRE **SOMMATION** de payer au REQUÉRANT la somme de **%s FCFA (%s francs CFA)** dans un délai de **HUIT (8) JOURS FRANCS** à compter de la signification du présent acte, à défaut de quoi il y sera contraint par toutes voies de droit.\n\n",
			GroupThousands(f.Amount), FrenchNumber(f.Amount))
		b.WriteString("**AU TITRE DE :** l'Acte Uniforme OHADA portant organisation des procédures simplifiées de recouvrement et des voies d'exécution.\n\n")
		b.WriteString("Les frais, droits et dépens du présent acte sont à la charge du DESTINATAIRE.\n\n")
	case models.CategoryConstat:
		b.WriteString("**DONT ACTE,** dressé pour servir et valoir ce que de droit, les constatations ci-dessus ayant été faites personnellement par l'huissier instrumentaire.\n\n")
	default:
		fmt.Fprintf(&b, "**DISPOSITIF :** %s signifié(e) au DESTINATAIRE pour qu'il n'en ignore.\n\n", category)
	}

	fmt.Fprintf(&b, "**FAIT ET PASSÉ À %s,** le **%s**, à %s.\n\n", strings.ToUpper(g.City), date, at)
	b.WriteString("**VISA ET SIGNATURE**\n\n[___________________________]")
	return b.String(), nil
}

var (
	frenchDays   = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

// FrenchDate formats t as "vendredi 14 février 2025".
func FrenchDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// GroupThousands formats n with a space every three digits.
func GroupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

var (
	frenchUnits = [...]string{"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
		"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize"}
	frenchTens = map[int64]string{2: "vingt", 3: "trente", 4: "quarante", 5: "cinquante", 6: "soixante"}
)

// FrenchNumber spells a non-negative amount in French words.
func FrenchNumber(n int64) string {
	if n <= 0 {
		return frenchUnits[0]
	}

	var parts []string
	if g := n / 1_000_000_000; g > 0 {
		parts = append(parts, below1000(g, true)+" milliard"+plural(g))
	}
	if g := n / 1_000_000 % 1000; g > 0 {
		parts = append(parts, below1000(g, true)+" million"+plural(g))
	}
	if g := n / 1000 % 1000; g > 0 {
		if g == 1 {
			parts = append(parts, "mille")
		} else {
			parts = append(parts, below1000(g, false)+" mille")
		}
	}
	if g := n % 1000; g > 0 {
		parts = append(parts, below1000(g, true))
	}
	return strings.Join(parts, " ")
}

func plural(n int64) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// below1000 spells 1..999. final is false when "mille" follows, which
// drops the plural s of cents and quatre-vingts.
func below1000(n int64, final bool) string {
	h, r := n/100, n%100

	var s string
	switch {
	case h == 1:
		s = "cent"
	case h > 1:
		s = frenchUnits[h] + " cent"
		if r == 0 && final {
			s += "s"
		}
	}
	if r > 0 {
		rest := below100(r)
		if !final && strings.HasSuffix(rest, "vingts") {
			rest = strings.TrimSuffix(rest, "s")
		}
		if s == "" {
			s = rest
		} else {
			s += " " + rest
		}
	}
	return s
}

func below100(n int64) string {
	if n < 17 {
		return frenchUnits[n]
	}
	if n < 20 {
		return "dix-" + frenchUnits[n-10]
	}

	t, u := n/10, n%10
	switch t {
	case 7:
		if u == 1 {
			return "soixante et onze"
		}
		return "soixante-" + below100(10+u)
	case 8:
		if u == 0 {
			return "quatre-vingts"
		}
		return "quatre-vingt-" + frenchUnits[u]
	case 9:
		return "quatre-vingt-" + below100(10+u)
	}

	switch u {
	case 0:
		return frenchTens[t]
	case 1:
		return frenchTens[t] + " et un"
	}
	return frenchTens[t] + "-" + frenchUnits[u]
}
