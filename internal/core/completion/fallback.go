package completion

import (
	"regexp"
	"strings"
)

const (
	greetingReply = "Hello! I'm your English tutor. I'm here to help you practice speaking English. Unfortunately, I'm currently running in demo mode without full AI capabilities, but I can still help you practice! Please continue speaking and I'll provide basic feedback."
	questionReply = "That's a great question! I can see you're practicing your English well. In full mode, I would provide detailed feedback on your grammar, pronunciation, and vocabulary. For now, keep practicing - your speech is being analyzed and you're doing great!"
	genericReply  = "Thank you for sharing that with me! I can see you're making good progress with your English speaking. Your message was clear and well-structured. Keep practicing and you'll continue to improve!"
)

var greeting = regexp.MustCompile(`(?i)hello|hi|hey|good (morning|afternoon|evening)`)

// FallbackReply picks a canned reply for the user turn: greeting first, then
// question, then a generic acknowledgement.
func FallbackReply(userContent string) string {
	switch {
	case greeting.MatchString(userContent):
		return greetingReply
	case strings.Contains(userContent, "?"):
		return questionReply
	default:
		return genericReply
	}
}

func fallbackResult(req Request, reason FallbackReason, attempts int, err error) Result {
	return Result{
		Kind:     Fallback,
		Reason:   reason,
		Attempts: attempts,
		Err:      err,
		Response: replyResponse(FallbackReply(req.UserContent())),
	}
}
