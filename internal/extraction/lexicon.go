package extraction

import "strings"

// categoryWords mark an utterance as talking about a kind of place.
// Used by the segment filter to keep signal-bearing transcript context.
var categoryWords = []string{
	"restaurant", "cafe", "bar", "bakery", "hotel", "museum", "park", "market", "store", "mall",
	"beach", "trail", "station", "attraction", "gallery", "brewery", "pub", "temple", "church",
	"stadium", "theater", "cinema", "neighborhood", "district", "plaza",
}

// actionWords mark an utterance as describing something the speaker did
// or recommends doing at a place.
var actionWords = []string{
	"go", "went", "visit", "visited", "recommend", "try", "tried", "ate", "eating", "stayed",
	"booked", "checked in", "check in", "check-in", "see", "saw", "stop", "stopped",
}

// locationCues are prepositions that, surrounded by spaces, suggest a
// place reference follows.
var locationCues = []string{
	"in", "at", "near", "next to", "on", "by", "across from", "around", "inside",
}

// placeKeywords mark a text fragment as likely naming a venue. Used by
// OCR acceptance and candidate scoring.
var placeKeywords = []string{
	"cafe", "coffee", "ramen", "restaurant", "bar", "bistro", "diner", "grill", "market",
	"bakery", "pizza", "taco", "sushi", "bbq", "pub", "tavern", "tea", "noodle", "burger",
	"kitchen", "izakaya", "food", "eatery", "steak", "pho", "gelato", "dessert", "brew",
}

// genericWords are phrases that look name-like but never identify a
// searchable place on their own.
var genericWords = map[string]struct{}{
	"today": {}, "tomorrow": {}, "yesterday": {}, "subscribe": {}, "follow": {},
	"like": {}, "comment": {}, "share": {}, "welcome": {}, "hello": {}, "thanks": {},
	"thank you": {}, "video": {}, "travel": {}, "trip": {}, "food": {}, "menu": {},
}

func containsAny(lowered string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// HasPlaceKeyword reports whether the lower-cased text contains a venue
// keyword.
func HasPlaceKeyword(lowered string) bool {
	return containsAny(lowered, placeKeywords)
}

// IsGenericPhrase reports whether the lower-cased text is a known
// generic phrase.
func IsGenericPhrase(lowered string) bool {
	_, ok := genericWords[lowered]
	return ok
}
