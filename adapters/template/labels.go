package tabletemplate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	labelPrevious    = "Previous"
	labelNext        = "Next"
	labelPageOf      = "Page %d of %d"
	labelCardinality = "%d of %d"
)

var labels = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	translations := map[language.Tag][4]string{
		language.English:    {"Previous", "Next", "Page %d of %d", "%d of %d"},
		language.Polish:     {"Poprzednia", "Następna", "Strona %d z %d", "%d z %d"},
		language.German:     {"Zurück", "Weiter", "Seite %d von %d", "%d von %d"},
		language.French:     {"Précédent", "Suivant", "Page %d sur %d", "%d sur %d"},
		language.Spanish:    {"Anterior", "Siguiente", "Página %d de %d", "%d de %d"},
		language.Italian:    {"Precedente", "Successiva", "Pagina %d di %d", "%d di %d"},
		language.Dutch:      {"Vorige", "Volgende", "Pagina %d van %d", "%d van %d"},
		language.Portuguese: {"Anterior", "Próxima", "Página %d de %d", "%d de %d"},
	}
	keys := [4]string{labelPrevious, labelNext, labelPageOf, labelCardinality}
	for tag, messages := range translations {
		for i, key := range keys {
			if err := labels.SetString(tag, key, messages[i]); err != nil {
				panic(err)
			}
		}
	}
}

// printer returns a message printer for the pagination labels in locale.
func printer(locale language.Tag) *message.Printer {
	if locale == language.Und {
		locale = language.English
	}
	return message.NewPrinter(locale, message.Catalog(labels))
}
