package schedule

import (
	"sort"
	"strings"
)

// Field weights for relevance scoring. For each query token only the
// highest-weighted matching field counts, so a token contributes at
// most once per event.
const (
	weightTitle       = 3
	weightTrack       = 2
	weightSpeaker     = 2
	weightDescription = 1
)

// minTokenLen filters out noise words like "a", "to", "is".
const minTokenLen = 3

// tokenize splits a query into lowercased whitespace-delimited tokens
// of useful length.
func tokenize(query string) []string {
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// scoreEvent computes the relevance of an event for the given tokens.
// Fields are checked in descending weight order; the first hit wins for
// that token.
func scoreEvent(e Event, tokens []string) int {
	title := strings.ToLower(e.Title)
	track := strings.ToLower(e.Track)
	desc := strings.ToLower(e.Description)

	score := 0
	for _, tok := range tokens {
		switch {
		case strings.Contains(title, tok):
			score += weightTitle
		case strings.Contains(track, tok):
			score += weightTrack
		case speakerMatch(e.Speakers, tok):
			score += weightSpeaker
		case strings.Contains(desc, tok):
			score += weightDescription
		}
	}
	return score
}

func speakerMatch(speakers []string, tok string) bool {
	for _, s := range speakers {
		if strings.Contains(strings.ToLower(s), tok) {
			return true
		}
	}
	return false
}

// SearchByQuery ranks events against a free-text query. Events that
// match no token are dropped. Results are ordered by score descending,
// then by start time ascending.
func SearchByQuery(events []Event, query string) []Event {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	type scored struct {
		event Event
		score int
	}
	var hits []scored
	for _, e := range events {
		if s := scoreEvent(e, tokens); s > 0 {
			hits = append(hits, scored{event: e, score: s})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].event.StartTime != hits[j].event.StartTime {
			return hits[i].event.StartTime < hits[j].event.StartTime
		}
		return hits[i].event.Slug < hits[j].event.Slug
	})

	results := make([]Event, len(hits))
	for i, h := range hits {
		results[i] = h.event
	}
	return results
}

// InterestResults holds the ranked union of per-interest searches plus
// the attribution of which interests matched each event. MatchedBy is
// computed from the same scoring pass used for ranking.
type InterestResults struct {
	Events    []Event
	MatchedBy map[string][]string // event slug -> interests that matched it
}

// SearchByInterests runs SearchByQuery independently per interest and
// unions the results. Events matching more distinct interests rank
// first; ties break by summed score across interests, then start time.
func SearchByInterests(events []Event, interests []string) InterestResults {
	type agg struct {
		event     Event
		distinct  int
		sumScore  int
		interests []string
	}
	bySlug := make(map[string]*agg)
	var order []string

	for _, interest := range interests {
		tokens := tokenize(interest)
		if len(tokens) == 0 {
			continue
		}
		for _, e := range events {
			s := scoreEvent(e, tokens)
			if s == 0 {
				continue
			}
			a, ok := bySlug[e.Slug]
			if !ok {
				a = &agg{event: e}
				bySlug[e.Slug] = a
				order = append(order, e.Slug)
			}
			a.distinct++
			a.sumScore += s
			a.interests = append(a.interests, interest)
		}
	}

	aggs := make([]*agg, 0, len(order))
	for _, slug := range order {
		aggs = append(aggs, bySlug[slug])
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].distinct != aggs[j].distinct {
			return aggs[i].distinct > aggs[j].distinct
		}
		if aggs[i].sumScore != aggs[j].sumScore {
			return aggs[i].sumScore > aggs[j].sumScore
		}
		if aggs[i].event.StartTime != aggs[j].event.StartTime {
			return aggs[i].event.StartTime < aggs[j].event.StartTime
		}
		return aggs[i].event.Slug < aggs[j].event.Slug
	})

	out := InterestResults{MatchedBy: make(map[string][]string, len(aggs))}
	for _, a := range aggs {
		out.Events = append(out.Events, a.event)
		out.MatchedBy[a.event.Slug] = a.interests
	}
	return out
}

// FilterByTrack keeps events whose track contains the given value,
// case-insensitively. Order is preserved.
func FilterByTrack(events []Event, track string) []Event {
	if track == "" {
		return events
	}
	needle := strings.ToLower(track)
	var out []Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Track), needle) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByDate keeps events starting on the given date (YYYY-MM-DD
// prefix match). Order is preserved.
func FilterByDate(events []Event, date string) []Event {
	if date == "" {
		return events
	}
	var out []Event
	for _, e := range events {
		if strings.HasPrefix(e.StartTime, date) {
			out = append(out, e)
		}
	}
	return out
}
