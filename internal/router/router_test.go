package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Greetings(t *testing.T) {
	for _, input := range []string{
		"hello",
		"Hello there",
		"HEY",
		"good morning!",
		"Good afternoon, CivicQuery",
		"hi everyone",
	} {
		assert.Equal(t, KindGreeting, Classify(input), "input %q", input)
	}
}

func TestClassify_Closings(t *testing.T) {
	for _, input := range []string{
		"bye",
		"Goodbye!",
		"thank you for the help",
		"thanks",
		"see you later",
		"exit",
		"quit",
	} {
		assert.Equal(t, KindClosing, Classify(input), "input %q", input)
	}
}

func TestClassify_ClosingWinsOverGreeting(t *testing.T) {
	assert.Equal(t, KindClosing, Classify("hello and goodbye"))
	assert.Equal(t, KindClosing, Classify("thanks, bye"))
}

func TestClassify_Questions(t *testing.T) {
	for _, input := range []string{
		"What is the submission deadline?",
		"How many team members are allowed?",
		"bi-weekly reporting requirements",
	} {
		assert.Equal(t, KindQuestion, Classify(input), "input %q", input)
	}
}

func TestClassify_BareHiIsNotAGreeting(t *testing.T) {
	// The greeting list matches "hi " with a trailing space, so a bare
	// "hi" with nothing after it falls through to the pipeline.
	assert.Equal(t, KindQuestion, Classify("hi"))
	assert.Equal(t, KindGreeting, Classify("hi there"))
}

func TestClassify_SubstringFalsePositives(t *testing.T) {
	// Known quirks of substring matching, kept for compatibility.
	assert.Equal(t, KindClosing, Classify("how do I exit the program described in the rules?"))
	assert.Equal(t, KindGreeting, Classify("they said hello in the document"))
}

func TestResponse(t *testing.T) {
	assert.Equal(t, GreetingResponse, Response(KindGreeting))
	assert.Equal(t, ClosingResponse, Response(KindClosing))
	assert.Equal(t, "", Response(KindQuestion))
}
