package wordlist

import (
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuici/internal/model"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(model.Word) bool

// FilterPlayable keeps words that can be drilled: at least one Han glyph
// and an answer label.
func FilterPlayable(word model.Word) bool {
	if word.English == "" && word.Pinyin == "" {
		return false
	}
	for _, r := range word.ID {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Apply returns the words kept by filter, logging the ones dropped.
func Apply(words []model.Word, filter FilterFunc) []model.Word {
	out := make([]model.Word, 0, len(words))
	for _, w := range words {
		if !filter(w) {
			log.Debug().Str("word", w.ID).Msg("skipping unplayable word")
			continue
		}
		out = append(out, w)
	}
	return out
}
