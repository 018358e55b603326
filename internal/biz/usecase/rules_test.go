package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
)

func TestRuleEngineLinks(t *testing.T) {
	assert := assert.New(t)
	eng := NewRuleEngine([]string{"spam"}, []string{"threat"})

	// structured link span wins regardless of text
	d := eng.Classify(&domain.Message{
		Text:     "harmless words",
		Entities: []domain.Entity{{Type: domain.EntityTextLink, Href: "https://spam.example"}},
	})
	assert.Equal(domain.VerdictDeleteLink, d.Verdict)

	// bare URL in plain text
	for _, text := range []string{
		"visit http://spam.example now",
		"see https://example.com/page",
		"www.example.org is great",
		"check malware.ru today",
	} {
		d := eng.Classify(&domain.Message{Text: text})
		assert.Equal(domain.VerdictDeleteLink, d.Verdict, "text: %s", text)
	}

	// link check runs before word checks
	d = eng.Classify(&domain.Message{Text: "spam at http://spam.example"})
	assert.Equal(domain.VerdictDeleteLink, d.Verdict)
}

func TestRuleEngineForbiddenWords(t *testing.T) {
	assert := assert.New(t)
	eng := NewRuleEngine([]string{"badword", "Spam"}, nil)

	d := eng.Classify(&domain.Message{Text: "some BADWORD here"})
	assert.Equal(domain.VerdictDeleteForbiddenWord, d.Verdict)
	assert.Equal("badword", d.Word)

	// configured casing is irrelevant too
	d = eng.Classify(&domain.Message{Text: "pure sPaM"})
	assert.Equal(domain.VerdictDeleteForbiddenWord, d.Verdict)
	assert.Equal("spam", d.Word)

	d = eng.Classify(&domain.Message{Text: "clean message"})
	assert.Equal(domain.VerdictAllow, d.Verdict)
}

func TestRuleEngineDangerousWords(t *testing.T) {
	assert := assert.New(t)
	eng := NewRuleEngine([]string{"badword"}, []string{"threat", "fraud"})

	d := eng.Classify(&domain.Message{Text: "this is a THREAT"})
	assert.Equal(domain.VerdictAlertDangerous, d.Verdict)
	assert.Equal("threat", d.Word)
	assert.False(d.Verdict.Terminal())

	// forbidden match short-circuits the dangerous check
	d = eng.Classify(&domain.Message{Text: "badword threat"})
	assert.Equal(domain.VerdictDeleteForbiddenWord, d.Verdict)
}

func TestRuleEngineEmptyText(t *testing.T) {
	assert := assert.New(t)
	eng := NewRuleEngine([]string{"x"}, []string{"y"})

	d := eng.Classify(&domain.Message{Text: ""})
	assert.Equal(domain.VerdictAllow, d.Verdict)

	// but an entity still matches on empty text
	d = eng.Classify(&domain.Message{Entities: []domain.Entity{{Type: domain.EntityURL}}})
	assert.Equal(domain.VerdictDeleteLink, d.Verdict)
}

func TestRuleEngineNoNormalization(t *testing.T) {
	// matching is raw unicode: accent variants are distinct words
	eng := NewRuleEngine([]string{"cafe"}, nil)
	d := eng.Classify(&domain.Message{Text: "café"})
	assert.Equal(t, domain.VerdictAllow, d.Verdict)
}
