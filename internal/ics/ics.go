// Package ics renders conference events as an iCalendar document that
// imports cleanly into Google Calendar and Apple Calendar.
package ics

import (
	"fmt"
	"strings"

	"github.com/Maxservais/chat/internal/schedule"
)

// Export is the result of generating a calendar document.
type Export struct {
	FileContent string `json:"file_content"`
	EventCount  int    `json:"event_count"`
	Message     string `json:"message"`
}

// Generator renders events into a single VCALENDAR with a fixed
// timezone block.
type Generator struct {
	tzid string
}

// NewGenerator creates a Generator for the given TZID.
func NewGenerator(tzid string) *Generator {
	if tzid == "" {
		tzid = "America/Argentina/Buenos_Aires"
	}
	return &Generator{tzid: tzid}
}

// Generate renders the given events. Events without a parseable start
// time are skipped rather than failing the whole export.
func (g *Generator) Generate(events []schedule.Event) Export {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//confchat//schedule//EN\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString(g.timezoneBlock())

	count := 0
	for _, e := range events {
		start := compactDateTime(e.StartTime)
		if start == "" {
			continue
		}
		end := compactDateTime(e.EndTime)
		if end == "" {
			end = start
		}

		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:%s-%s@confchat\r\n", start, Slugify(e.Title))
		fmt.Fprintf(&b, "DTSTART;TZID=%s:%s\r\n", g.tzid, start)
		fmt.Fprintf(&b, "DTEND;TZID=%s:%s\r\n", g.tzid, end)
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", EscapeText(e.Title))
		if e.Description != "" {
			fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", EscapeText(e.Description))
		}
		if e.Venue != "" {
			fmt.Fprintf(&b, "LOCATION:%s\r\n", EscapeText(e.Venue))
		}
		if e.Track != "" {
			fmt.Fprintf(&b, "CATEGORIES:%s\r\n", EscapeText(e.Track))
		}
		b.WriteString("END:VEVENT\r\n")
		count++
	}

	b.WriteString("END:VCALENDAR\r\n")

	return Export{
		FileContent: b.String(),
		EventCount:  count,
		Message:     fmt.Sprintf("Calendar with %d event(s) ready to import.", count),
	}
}

// timezoneBlock emits a minimal VTIMEZONE. The conference runs in a
// single zone with no DST transition during the event window.
func (g *Generator) timezoneBlock() string {
	var b strings.Builder
	b.WriteString("BEGIN:VTIMEZONE\r\n")
	fmt.Fprintf(&b, "TZID:%s\r\n", g.tzid)
	b.WriteString("BEGIN:STANDARD\r\n")
	b.WriteString("DTSTART:19700101T000000\r\n")
	b.WriteString("TZOFFSETFROM:-0300\r\n")
	b.WriteString("TZOFFSETTO:-0300\r\n")
	b.WriteString("TZNAME:-03\r\n")
	b.WriteString("END:STANDARD\r\n")
	b.WriteString("END:VTIMEZONE\r\n")
	return b.String()
}

// EscapeText escapes the characters RFC 5545 reserves in text values.
func EscapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// Slugify lowercases a title and reduces it to hyphen-separated
// alphanumeric runs, suitable for stable UIDs.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// compactDateTime converts "2026-11-17T10:00:00" (optionally with a
// zone suffix) to "20261117T100000". Returns "" if the input is too
// short to contain a date and time.
func compactDateTime(iso string) string {
	if len(iso) < 19 {
		return ""
	}
	iso = iso[:19]
	r := strings.NewReplacer("-", "", ":", "")
	return r.Replace(iso)
}
