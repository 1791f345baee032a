package survey

import (
	"bytes"
	"encoding/json"
)

// EncodeRatings serializes peer scores in the canonical payload shape
// {"<peer>": {"intimacy": <score>}, ...}. Keys are written in the given
// order; peers in order that are missing from scores are skipped.
func EncodeRatings(scores map[string]int, order []string) []byte {
	var b bytes.Buffer
	b.WriteByte('{')
	first := true
	for _, peer := range order {
		score, ok := scores[peer]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(peer)
		b.Write(key)
		b.WriteString(`:{"intimacy":`)
		val, _ := json.Marshal(score)
		b.Write(val)
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.Bytes()
}
