// Package chat implements the canned-reply chat action, its transports and
// the per-view chat session state.
package chat

import (
	"strings"
	"unicode/utf16"
)

const (
	greetingReply  = "Hello! It's great to hear from you. How can I assist you today?"
	helpReply      = "I'm here to help! You can ask me questions about various topics, and I'll do my best to provide helpful answers. What would you like to know?"
	thanksReply    = "You're very welcome! Feel free to ask if you need anything else. I'm always here to help!"
	wellbeingReply = "I'm doing great, thank you for asking! I'm ready to help you with whatever you need. How can I assist you?"
	farewellReply  = "Goodbye! It was nice chatting with you. Feel free to come back anytime you need assistance!"
	nameReply      = "I'm an AI Assistant, here to help answer your questions and assist with various tasks. What would you like to know?"
)

// fallbackReplies is indexed by input length when no keyword matches.
var fallbackReplies = [8]string{
	"Hello! I'm your AI assistant. How can I help you today?",
	"That's an interesting question! Let me think about that for a moment.",
	"I'd be happy to help you with that. Could you provide more details?",
	"Great question! Here's what I think about that topic.",
	"I understand what you're asking. Let me explain it in a clear way.",
	"That's a common concern. Here's my perspective on the matter.",
	"I'm here to assist you with any questions you have!",
	"Thanks for asking! Here's some information that might help you.",
}

type rule struct {
	keywords []string
	reply    string
}

// rules are checked in order; the first rule with any matching keyword wins.
var rules = []rule{
	{keywords: []string{"hello", "hi", "hey"}, reply: greetingReply},
	{keywords: []string{"help"}, reply: helpReply},
	{keywords: []string{"thank"}, reply: thanksReply},
	{keywords: []string{"how are you", "how do you do"}, reply: wellbeingReply},
	{keywords: []string{"bye", "goodbye"}, reply: farewellReply},
	{keywords: []string{"name"}, reply: nameReply},
}

// Classify returns the canned reply for input. It is pure: the same input
// always yields the same reply.
func Classify(input string) string {
	lower := strings.ToLower(input)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply
			}
		}
	}
	return fallbackReplies[utf16Len(input)%len(fallbackReplies)]
}

// utf16Len counts UTF-16 code units, which is how browsers measure string length.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
