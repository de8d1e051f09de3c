package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/praxkit/praxis-chat/tenant"
)

var testVars = tenant.Variables{
	PracticeName: "Hausarztpraxis Painten",
	Location:     "Painten",
	ContactPhone: "09499 1234",
	ResponseTime: "innerhalb eines Werktags",
}

func TestComposePromptSystemText(t *testing.T) {
	prompt := ComposePrompt(testVars, nil, "Wie sind die Öffnungszeiten?")

	assert.Contains(t, prompt.SystemText, "Hausarztpraxis Painten")
	assert.Contains(t, prompt.SystemText, "in Painten")
	assert.Contains(t, prompt.SystemText, "09499 1234")
	assert.Contains(t, prompt.SystemText, "innerhalb eines Werktags")
	assert.Contains(t, prompt.SystemText, "Keine Diagnosen")
	assert.Contains(t, prompt.SystemText, "112")
	assert.Contains(t, prompt.SystemText, "116 117")
	assert.Contains(t, prompt.SystemText, "höchstens 5–7 Bulletpoints")
	assert.Contains(t, prompt.SystemText, "Geburtsdatum (TT.MM.JJJJ)")
}

func TestComposePromptUserTextEmbedsAllChunks(t *testing.T) {
	matches := []ChunkMatch{
		{Content: "Montag bis Freitag 08:00 bis 12:00 Uhr", Distance: 0.1},
		{Content: "Mittwochnachmittag geschlossen", Distance: 0.2},
		{Content: "Telefonische Erreichbarkeit ab 07:30 Uhr", Distance: 0.3},
	}

	prompt := ComposePrompt(testVars, matches, "Wie sind die Öffnungszeiten?")

	assert.Contains(t, prompt.UserText, `"""Wie sind die Öffnungszeiten?"""`)
	for _, match := range matches {
		assert.Contains(t, prompt.UserText, "- "+match.Content)
	}
	assert.Contains(t, prompt.UserText, "Praxiswissen")
	assert.Contains(t, prompt.UserText, "höchstens 5–7 Bulletpoints")
}

func TestComposePromptIsIdempotent(t *testing.T) {
	matches := []ChunkMatch{{Content: "Sprechzeiten nach Vereinbarung"}}

	first := ComposePrompt(testVars, matches, "Gibt es Abendtermine?")
	second := ComposePrompt(testVars, matches, "Gibt es Abendtermine?")

	assert.Equal(t, first, second)
}

func TestComposePromptKeepsQuestionVerbatim(t *testing.T) {
	question := "  Was kostet eine   Impfung?\n"
	prompt := ComposePrompt(testVars, nil, question)

	assert.True(t, strings.Contains(prompt.UserText, question),
		"question must not be normalized by the composer")
}
