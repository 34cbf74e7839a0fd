package chat

import (
	"fmt"
	"strings"

	"github.com/Maxservais/chat/internal/session"
)

// systemPrompt fixes the assistant's role and scope. Echo suppression
// of raw tool output is an instruction, not a code-level guarantee.
const systemPrompt = `You are the conference schedule assistant. You help attendees find talks, workshops, and speakers, and you can export selections as a calendar file.

Rules:
- Only answer questions about the conference schedule and logistics.
- Use the provided tools to look up real data; never invent sessions, times, or speakers.
- Summarize tool results conversationally; do not repeat raw tool output verbatim.
- Keep replies short and concrete. Mention session titles and start times.
- If nothing matches, say so and suggest the user describe their interests differently.`

// profileBlock renders the derived profile as extra system context for
// the reasoning turn. Read-only; the profile is produced solely by
// background analysis.
func profileBlock(p *session.Profile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nKnown attendee profile (from @%s, %d posts analyzed):\n", p.Subject, p.ItemsAnalyzed)
	fmt.Fprintf(&b, "Interests: %s\n", strings.Join(p.Topics, ", "))
	if p.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", p.Summary)
	}
	b.WriteString("Prefer recommending sessions that match these interests when relevant.")
	return b.String()
}

// Fixed deterministic replies; these paths never reach the model.
const refusalReply = "I can't help with that. I'm the conference schedule assistant: ask me about talks, workshops, speakers, or exporting your calendar."

func workingReply(subject string) string {
	return fmt.Sprintf("On it! I'm analyzing @%s's public posts in the background. Keep asking me about the schedule in the meantime; I'll post the results here when they're ready.", subject)
}

func failureReply(subject string) string {
	return fmt.Sprintf("I couldn't analyze @%s's profile (no usable public posts, or the service was unavailable). Tell me your interests directly and I'll match sessions for you.", subject)
}

func profileReadyReply(p *session.Profile) string {
	return fmt.Sprintf("Done! Based on @%s's posts (%d analyzed), the main interests are: %s. Want session recommendations to match?",
		p.Subject, p.ItemsAnalyzed, strings.Join(p.Topics, ", "))
}
