package proposal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FormatCurrency renders an amount as dollars with two decimals.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// FormatArea renders square footage without trailing zeros.
func FormatArea(area float64) string {
	return strconv.FormatFloat(area, 'f', -1, 64) + " sq ft"
}

// FormatDate renders a date the way it is printed on the proposal.
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

const fileNamePrefix = "GoNano_Proposal_"

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName is the download name for a customer's proposal, with whitespace
// runs replaced by underscores.
func FileName(customerName, ext string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(customerName), "_")
	if name == "" {
		name = "Customer"
	}
	return fileNamePrefix + name + ext
}

// ASCIIFileName folds accents and replaces characters that are unsafe in a
// quoted Content-Disposition filename.
func ASCIIFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == '"' || r == '\\' || r == '/' || r == ';':
			b.WriteByte('_')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
