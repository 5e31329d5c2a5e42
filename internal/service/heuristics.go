package service

import (
	"regexp"
	"strings"

	"github.com/askdoc-io/askdoc/internal/domain"
)

const noInformationAnswer = "I don't have enough information in the document to answer that question."

var (
	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	datePattern = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b|\b(19|20)\d{2}\b`)

	// placeSuffixes and knownCities form a minimal gazetteer for "where"
	// questions; it catches the common cases in office documents without
	// shipping a geo dataset.
	placeSuffixes = []string{"City", "District", "State", "Country", "County", "Province"}
	knownCities   = []string{
		"London", "Paris", "Berlin", "Madrid", "Rome", "Amsterdam",
		"New York", "Los Angeles", "Chicago", "Boston", "Seattle",
		"Tokyo", "Beijing", "Mumbai", "Sydney", "Toronto", "Dubai",
	}

	capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)
)

// heuristicAnswer extracts a best-effort answer from chunk text alone, keyed
// by the question word. Used when the language model is unreachable.
func heuristicAnswer(question string, chunks []*domain.ChunkMatch) string {
	if len(chunks) == 0 {
		return noInformationAnswer
	}

	q := strings.ToLower(question)
	combined := joinChunkContents(chunks)

	switch {
	case strings.Contains(q, "what"):
		sentences := splitSentences(combined, 20)
		if len(sentences) > 5 {
			sentences = sentences[:5]
		}
		if len(sentences) > 0 {
			return strings.Join(sentences, ". ")
		}

	case strings.Contains(q, "who"):
		names := dedupe(namePattern.FindAllString(combined, -1))
		if len(names) > 3 {
			names = names[:3]
		}
		if len(names) > 0 {
			return "The document mentions: " + strings.Join(names, ", ")
		}

	case strings.Contains(q, "when"):
		dates := dedupe(datePattern.FindAllString(combined, -1))
		if len(dates) > 3 {
			dates = dates[:3]
		}
		if len(dates) > 0 {
			return "Dates found in the document: " + strings.Join(dates, ", ")
		}

	case strings.Contains(q, "where"):
		places := dedupe(findPlaces(combined))
		if len(places) > 3 {
			places = places[:3]
		}
		if len(places) > 0 {
			return "Locations found in the document: " + strings.Join(places, ", ")
		}
	}

	// Generic extraction when no keyword matched or its pattern found nothing.
	sentences := splitSentences(combined, 30)
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	if len(sentences) > 0 {
		return strings.Join(sentences, ". ")
	}

	if first := strings.TrimSpace(chunks[0].Content); first != "" {
		return first
	}
	return noInformationAnswer
}

func joinChunkContents(chunks []*domain.ChunkMatch) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}

// splitSentences splits on sentence terminators and keeps sentences longer
// than minLen runes.
func splitSentences(text string, minLen int) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > minLen {
			out = append(out, s)
		}
	}
	return out
}

func findPlaces(text string) []string {
	var places []string
	for _, phrase := range capitalizedPhrase.FindAllString(text, -1) {
		for _, suffix := range placeSuffixes {
			if strings.HasSuffix(phrase, suffix) && phrase != suffix {
				places = append(places, phrase)
				break
			}
		}
	}
	for _, city := range knownCities {
		if strings.Contains(text, city) {
			places = append(places, city)
		}
	}
	return places
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
