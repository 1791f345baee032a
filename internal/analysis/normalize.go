package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/abhisek/sociogram/internal/survey"
)

// Rating is one validated peer score.
type Rating struct {
	Intimacy int
}

// PeerRating pairs a rated peer with the score they were given.
type PeerRating struct {
	PeerID string
	Rating Rating
}

// Record is a response after normalization. Every rating references a
// roster member other than the submitter and carries a score in [0, 100].
type Record struct {
	ResponseID  string
	SubmitterID string
	Ratings     []PeerRating // payload order, one entry per peer
	FreeText    survey.FreeText

	// Malformed is set when the payload could not be parsed. The record is
	// kept for its free text and contributes no ratings.
	Malformed bool
}

// Score returns the score the submitter gave peer.
func (r Record) Score(peer string) (int, bool) {
	for _, pr := range r.Ratings {
		if pr.PeerID == peer {
			return pr.Rating.Intimacy, true
		}
	}
	return 0, false
}

// NormalizeStats counts what normalization threw away. Diagnostic only.
type NormalizeStats struct {
	Malformed         int // payloads that failed to parse
	UnknownPeers      int // ratings of peers not on the roster
	InvalidScores     int // non-numeric or out-of-range scores
	SelfRatings       int // ratings of the submitter by themselves
	UnknownSubmitters int // responses whose submitter is not on the roster
	Duplicates        int // later responses from an already-seen submitter
}

// Normalized is the output of Normalize.
type Normalized struct {
	Records []Record
	Stats   NormalizeStats
}

// Normalize turns stored responses into Records.
//
// Responses are processed in the order given. When a submitter appears more
// than once, the first response wins and later ones are discarded whole.
// Nothing here fails: bad payloads, unknown peers and bad scores are
// dropped and counted in Stats.
func Normalize(responses []survey.Response, roster *survey.Roster) Normalized {
	var out Normalized
	seen := make(map[string]bool, len(responses))

	for _, resp := range responses {
		if seen[resp.SubmitterID] {
			out.Stats.Duplicates++
			continue
		}
		seen[resp.SubmitterID] = true

		rec := Record{
			ResponseID:  resp.ID,
			SubmitterID: resp.SubmitterID,
			FreeText:    resp.FreeText,
		}

		entries, err := decodePayload(resp.Ratings)
		if err != nil {
			rec.Malformed = true
			out.Stats.Malformed++
			out.Records = append(out.Records, rec)
			continue
		}

		if !roster.Contains(resp.SubmitterID) {
			out.Stats.UnknownSubmitters++
			out.Records = append(out.Records, rec)
			continue
		}

		for _, e := range entries {
			switch {
			case e.peer == resp.SubmitterID:
				out.Stats.SelfRatings++
			case !roster.Contains(e.peer):
				out.Stats.UnknownPeers++
			default:
				score, ok := parseScore(e.value)
				if !ok {
					out.Stats.InvalidScores++
					continue
				}
				rec.Ratings = append(rec.Ratings, PeerRating{
					PeerID: e.peer,
					Rating: Rating{Intimacy: score},
				})
			}
		}

		out.Records = append(out.Records, rec)
	}

	return out
}

type payloadEntry struct {
	peer  string
	value json.RawMessage
}

var errNotObject = errors.New("ratings payload is not a JSON object")

// decodePayload reads the top-level object key by key so that peer order
// survives. A repeated key keeps its first value. An empty payload or JSON
// null decodes to no entries.
func decodePayload(data []byte) ([]payloadEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var entries []payloadEntry
	keys := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read value for %q: %w", key, err)
		}
		if keys[key] {
			continue
		}
		keys[key] = true
		entries = append(entries, payloadEntry{peer: key, value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read payload end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after ratings payload")
	}

	return entries, nil
}

// parseScore accepts {"intimacy": n} and, for older payloads, a bare n.
// Fractions round to the nearest integer; values outside [0, 100] are
// rejected.
func parseScore(raw json.RawMessage) (int, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}

	switch t := v.(type) {
	case json.Number:
		return scoreFromNumber(t)
	case map[string]any:
		n, ok := t["intimacy"].(json.Number)
		if !ok {
			return 0, false
		}
		return scoreFromNumber(n)
	}
	return 0, false
}

func scoreFromNumber(n json.Number) (int, bool) {
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < MinScore || f > MaxScore {
		return 0, false
	}
	return int(math.Round(f)), true
}
