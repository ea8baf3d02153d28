package week

import (
	"time"

	"github.com/ldi/gotask/embed/i18n"
	"golang.org/x/text/language"
)

// Locale selects day names and date-key formatting.
type Locale struct {
	Tag     language.Tag
	strings i18n.Strings
	name    string
}

var (
	PtBR = newLocale(language.BrazilianPortuguese, "pt-BR")
	EnUS = newLocale(language.AmericanEnglish, "en-US")

	// DefaultLocale is used when a tag cannot be matched.
	DefaultLocale = PtBR

	supported = []Locale{PtBR, EnUS}
	matcher   = language.NewMatcher([]language.Tag{PtBR.Tag, EnUS.Tag})
)

func newLocale(tag language.Tag, name string) Locale {
	return Locale{Tag: tag, strings: i18n.MustLoad(name), name: name}
}

// ParseLocale resolves a BCP 47 tag or a bare language code ("pt", "en").
// Unknown or malformed tags silently fall back to DefaultLocale.
func ParseLocale(tag string) Locale {
	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return DefaultLocale
	}
	return supported[index]
}

func (l Locale) String() string {
	if l.name == "" {
		return DefaultLocale.name
	}
	return l.name
}

// Language returns the short language code stored in settings.
func (l Locale) Language() string {
	base, _ := l.Tag.Base()
	return base.String()
}

func (l Locale) Strings() i18n.Strings {
	if l.name == "" {
		return DefaultLocale.strings
	}
	return l.strings
}

// DayKey formats a date as the key used for days outside the current week.
func (l Locale) DayKey(d time.Time) string {
	return d.Format(l.Strings().DateLayout)
}

// ShortDate is the dd/MM (or MM/dd) label shown next to a day name.
func (l Locale) ShortDate(d time.Time) string {
	return d.Format(l.Strings().ShortLayout)
}

// ParseDayKey is the inverse of DayKey, interpreted in loc.
func (l Locale) ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(l.Strings().DateLayout, key, loc)
}
