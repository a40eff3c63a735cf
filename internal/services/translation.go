// internal/services/translation.go
package services

// Translator converts chat text between display languages. The platform
// ships without a real translation backend; PassthroughTranslator keeps the
// display-language fallback contract intact until one is plugged in.
type Translator interface {
	Translate(text, fromLang, toLang string) (string, error)
}

// PassthroughTranslator echoes the original text unchanged.
type PassthroughTranslator struct{}

func NewPassthroughTranslator() *PassthroughTranslator {
	return &PassthroughTranslator{}
}

func (t *PassthroughTranslator) Translate(text, fromLang, toLang string) (string, error) {
	return text, nil
}
