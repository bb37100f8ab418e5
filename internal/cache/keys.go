package cache

import (
	"strings"

	"trendscribe/internal/models"
)

// Key namespace for research results. The exact key encodes all four request
// fields; the fuzzy prefix encodes a shorter topic truncation only and is
// used solely for best-effort recovery lookups.
const (
	KeyNamespace = "research"

	exactTopicLen = 100
	fuzzyTopicLen = 50
)

// Normalize lowercases and trims s, replaces every rune outside [a-z0-9]
// with '-' (character by character, runs are not collapsed), and truncates
// to maxLen when maxLen > 0. Total and idempotent for any input.
func Normalize(s string, maxLen int) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// ExactKey derives the canonical cache key for a request. Requests that
// normalize identically on all four fields yield the same key. The writer
// and every reader (including recovery) must agree on this format:
// research:<norm(topic,100)>:<norm(contentType)>:<norm(platform)>:<language>
func ExactKey(req models.ResearchRequest) string {
	return KeyNamespace + ":" +
		Normalize(req.Topic, exactTopicLen) + ":" +
		Normalize(req.ContentType, 0) + ":" +
		Normalize(req.Platform, 0) + ":" +
		req.Language
}

// FuzzyPrefix derives the coarser recovery prefix: research:<norm(topic,50)>.
// Requests differing only in punctuation, case, or fields beyond the
// truncation length collide here, which is what makes recovery of a
// near-identical resubmission possible.
func FuzzyPrefix(req models.ResearchRequest) string {
	return KeyNamespace + ":" + Normalize(req.Topic, fuzzyTopicLen)
}
