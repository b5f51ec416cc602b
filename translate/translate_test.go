package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLanguage(language.AmericanEnglish)
	assert.Equal("bad opcode 42", From("bad opcode %d", 42))
	assert.Equal("ip 1,000 halted", From("ip %d %v", 1000, "halted"))

	SetLanguage(language.German)
	assert.Equal("ip 1.000", From("ip %d", 1000))

	SetLanguage(language.AmericanEnglish)
}
