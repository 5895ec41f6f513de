package mascot

import "time"

var frames = map[Animation][]string{
	Walk:      {"ʕ•ᴥ•ʔ ", " ʕ•ᴥ•ʔ"},
	Idle:      {"ʕ-ᴥ-ʔ", "ʕ-ᴥ-ʔz", "ʕ-ᴥ-ʔzz"},
	Rally:     {"ʕ•̀ᴥ•́ʔ✧", "ʕง•ᴥ•ʔง"},
	Sad:       {"ʕ╥ᴥ╥ʔ", "ʕ;ᴥ;ʔ"},
	Celebrate: {"\\ʕ^ᴥ^ʔ/", "ʕ^ᴥ^ʔ★", "\\ʕ^ᴥ^ʔ/"},
	Ouch:      {"ʕ>ᴥ<ʔ!", "ʕ×ᴥ×ʔ"},
}

// Frame returns the glyphs to draw for the current clip at now.
func (m *Mascot) Frame(now time.Time) string {
	list := frames[m.current]
	if len(list) == 0 {
		return ""
	}
	step := m.current.Duration() / time.Duration(len(list))
	if step <= 0 {
		return list[0]
	}
	idx := int(now.Sub(m.startedAt)/step) % len(list)
	if idx < 0 {
		idx = 0
	}
	return list[idx]
}
