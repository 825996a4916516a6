// Package router short-circuits conversational pleasantries before they
// reach the retrieval pipeline.
package router

import "strings"

// Kind classifies a chat turn.
type Kind int

const (
	// KindQuestion routes the turn to the retrieval pipeline.
	KindQuestion Kind = iota
	// KindGreeting gets the canned greeting response.
	KindGreeting
	// KindClosing gets the canned farewell response.
	KindClosing
)

// Canned responses for conversational turns. These are streamed exactly
// like generated answers, with no sources attached.
const (
	GreetingResponse = "Hello! I am CivicQuery. I can help you navigate the G7 GovAI Challenge guidelines. What would you like to know?"
	ClosingResponse  = "You're welcome! If you have more questions about the G7 Challenge, feel free to ask. Good luck!"
)

// Substring matching is deliberately crude. "hi " keeps its trailing space
// so that words like "this" or "history" do not match; a bare "hi" still
// misses, which is an accepted gap.
var (
	closingKeywords = []string{"bye", "goodbye", "thank you", "thanks", "see you", "exit", "quit"}

	greetingKeywords = []string{"hello", "hi ", "hey", "good morning", "good afternoon"}
)

// Classify decides how to handle one user turn. Closings win over
// greetings, so "thanks, bye" in a message that also says "hello" is
// treated as a farewell.
func Classify(input string) Kind {
	lower := strings.ToLower(input)

	for _, kw := range closingKeywords {
		if strings.Contains(lower, kw) {
			return KindClosing
		}
	}
	for _, kw := range greetingKeywords {
		if strings.Contains(lower, kw) {
			return KindGreeting
		}
	}
	return KindQuestion
}

// Response returns the canned text for a conversational kind, or "" for
// questions.
func Response(k Kind) string {
	switch k {
	case KindGreeting:
		return GreetingResponse
	case KindClosing:
		return ClosingResponse
	default:
		return ""
	}
}
