package service

import (
	"regexp"
	"strings"
	"unicode"
)

// Classifier decides whether a user message needs document retrieval at
// all. A false positive costs one retrieval round trip; a false negative
// costs answer quality, so implementations should retrieve when in doubt.
type Classifier interface {
	NeedsRetrieval(message string) bool
}

// RuleClassifier is the default Classifier: a small set of pattern rules
// that skip retrieval for greetings, pleasantries, and chatter about the
// assistant itself, and retrieve for everything else.
type RuleClassifier struct {
	smallTalk []*regexp.Regexp
}

var smallTalkGreetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "sup": {},
	"thanks": {}, "thank you": {}, "thx": {}, "ty": {},
	"bye": {}, "goodbye": {}, "see you": {}, "good morning": {},
	"good afternoon": {}, "good evening": {}, "good night": {},
	"ok": {}, "okay": {}, "cool": {}, "nice": {}, "great": {},
	"yes": {}, "no": {}, "sure": {},
}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		smallTalk: []*regexp.Regexp{
			regexp.MustCompile(`^(hi|hello|hey)\b[\s,!.]*\w*[!.\s]*$`),
			regexp.MustCompile(`^how are you( doing| today)?$`),
			regexp.MustCompile(`^(who|what) are you$`),
			regexp.MustCompile(`^what can you do( for me)?$`),
			regexp.MustCompile(`^(thanks|thank you)( (so|very) much| a lot)?$`),
		},
	}
}

func (c *RuleClassifier) NeedsRetrieval(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, "!.?, ")
	if normalized == "" {
		return false
	}
	if !containsLetter(normalized) {
		return false
	}
	if _, ok := smallTalkGreetings[normalized]; ok {
		return false
	}
	for _, re := range c.smallTalk {
		if re.MatchString(normalized) {
			return false
		}
	}
	return true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
