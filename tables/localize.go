package tables

import (
	"math"
	"math/big"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// L10NSettings control number localization. UseL10N turns localization on
// for every column that does not opt out. Locale selects the CLDR number
// symbols; an undetermined locale uses the root locale, which matches English.
type L10NSettings struct {
	UseL10N              bool
	UseThousandSeparator bool
	Locale               language.Tag
}

var (
	supportedLocales = display.Supported.Tags()
	localeMatcher    = language.NewMatcher(supportedLocales)
	printers         sync.Map // language.Tag -> *message.Printer
)

// SupportedLocales lists the CLDR locales NegotiateLocale can pick.
func SupportedLocales() []language.Tag {
	return append([]language.Tag(nil), supportedLocales...)
}

// NegotiateLocale picks the best supported locale for an Accept-Language
// header value. Regional variants such as de-CH keep their region when CLDR
// has data for them. It returns language.Und when nothing matches.
func NegotiateLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Und
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return language.Und
	}
	return supportedLocales[index]
}

func printerFor(tag language.Tag) *message.Printer {
	if p, ok := printers.Load(tag); ok {
		return p.(*message.Printer)
	}
	p, _ := printers.LoadOrStore(tag, message.NewPrinter(tag))
	return p.(*message.Printer)
}

// FormatNumber renders numeric values with the CLDR number symbols of locale.
// Grouping separators are only written when grouping is set. Fractions keep
// their shortest exact form. The second result is false for values that are
// not numbers.
func FormatNumber(value any, locale language.Tag, grouping bool) (string, bool) {
	v, ok := decimalValue(value)
	if !ok {
		return "", false
	}
	opts := []number.Option{number.MaxFractionDigits(-1)}
	if !grouping {
		opts = append(opts, number.NoSeparator())
	}
	return printerFor(locale).Sprint(number.Decimal(v, opts...)), true
}

func decimalValue(value any) (any, bool) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, true
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, false
		}
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	case *big.Float:
		if v == nil || v.IsInf() {
			return nil, false
		}
		if v.IsInt() {
			if i, acc := v.Int64(); acc == big.Exact {
				return i, true
			}
			if u, acc := v.Uint64(); acc == big.Exact {
				return u, true
			}
		}
		f, _ := v.Float64()
		return f, true
	default:
		return nil, false
	}
}
