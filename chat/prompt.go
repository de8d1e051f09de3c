package chat

import (
	"fmt"
	"strings"

	"github.com/praxkit/praxis-chat/tenant"
)

// Prompt is one composed generation request. Composition is pure: the same
// tenant variables, matches, and question always produce the same texts.
type Prompt struct {
	SystemText string
	UserText   string
}

// ComposePrompt builds the system persona and the user turn for a single
// generation call. The retrieved chunks are rendered as a bulleted excerpt
// list inside the user turn; the formatting rules appear in both texts
// because the model follows them more reliably when repeated.
func ComposePrompt(vars tenant.Variables, matches []ChunkMatch, question string) Prompt {
	return Prompt{
		SystemText: systemText(vars),
		UserText:   userText(question, matches),
	}
}

func systemText(vars tenant.Variables) string {
	return fmt.Sprintf(`Rolle:
Sie sind der digitale Praxis-Assistent der %s in %s.

WICHTIGE REGELN:

- Keine Diagnosen oder Therapieempfehlungen geben.
- In Notfällen: 112, außerhalb der Sprechzeiten: 116 117.
- Antworten immer direkt auf die Frage, ohne Begrüßung oder Abschlussformeln.
- Höflicher Ton, Sie-Form.
- Kurze, übersichtliche Absätze. Standard ist normaler Fließtext.

FORMATIERUNG:

- Standard: Antworten Sie in normalem Fließtext mit kurzen Absätzen.
- Verwenden Sie Markdown-Listen mit "- " nur dann, wenn Sie mehrere eigenständige Punkte aufzählen:
  - z. B. Leistungen, Öffnungszeiten, Schritte, Voraussetzungen, verschiedene Optionen
- Nutzen Sie pro Liste höchstens 5–7 Bulletpoints.
- Erfinden Sie keine Listen, wenn ein normaler Satz ausreicht.
- Keine Sternchenformatierung (**Text**), nur klare Absätze und ggf. Listen.

ÖFFNUNGSZEITEN:

- Öffnungszeiten nach Möglichkeit als Liste:
  - Montag: 08:00–12:00, 16:00–17:00
  - Dienstag: ...
- Wenn nur eine einzelne Zeit genannt wird, genügt ein normaler Satz.

UMGANG MIT FEHLENDEN INFORMATIONEN:

- Wenn Informationen in den Praxisdaten nicht vorhanden sind, sagen Sie das offen.
- Verweisen Sie dann auf die Kontaktmöglichkeit der Praxis und nennen Sie die Telefonnummer %s.

TERMINANFRAGEN:

- Wenn jemand einen Termin möchte, fragen Sie strukturiert nach:
  - vollständigem Namen
  - Geburtsdatum (TT.MM.JJJJ)
  - Telefonnummer
  - kurzem Anliegen
  - bevorzugtem Zeitraum
  - Einverständnis zur Weitergabe

Antwortzeit der Praxis: %s.`, vars.PracticeName, vars.Location, vars.ContactPhone, vars.ResponseTime)
}

func userText(question string, matches []ChunkMatch) string {
	var sb strings.Builder
	sb.WriteString("Nutzerfrage:\n\"\"\"")
	sb.WriteString(question)
	sb.WriteString("\"\"\"\n\nPraxiswissen (Stichpunkte / Textauszüge):\n")
	for _, match := range matches {
		sb.WriteString("- ")
		sb.WriteString(match.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(`
Formatiere deine Antwort wie folgt:

- Standard ist normaler Fließtext mit kurzen Absätzen.
- Nutze eine kurze Markdown-Liste mit "- " nur, wenn die Frage nach mehreren Leistungen, Öffnungszeiten, Vorteilen, Schritten oder ähnlichen Aufzählungen fragt oder wenn mehrere Punkte klar getrennt dargestellt werden sollen.
- Verwende pro Liste höchstens 5–7 Bulletpoints.
- Wenn es nur ein einzelner Hinweis oder eine kurze Erklärung ist, nutze keinen Listenpunkt, sondern normalen Text.
- Keine Begrüßung, kein Gruß, sachlicher Chat-Stil.
`)
	return sb.String()
}
