// Package segment splits free-form notes documents into dated records.
//
// A document is a run of sections, each introduced by a day/month/year date
// such as 21/06/2024, 1-2-2024 or 01.02.2024. Text before the first date is
// discarded. A date followed only by whitespace and then another date yields
// no record of its own: the later date takes over. A date at the very end of
// the text yields one record with empty content.
package segment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/models"
)

// dateRe matches a date token that is not part of a longer digit run.
var dateRe = regexp2.MustCompile(`(?<!\d)\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4}(?!\d)`, regexp2.None)

// Segment is one piece of the split text. Date segments carry the raw token.
type Segment struct {
	Text string
	Date bool
}

// Tokens splits text into alternating non-date and date segments, keeping
// the date tokens. Empty non-date segments are omitted.
func Tokens(text string) ([]Segment, error) {
	runes := []rune(text)
	var out []Segment
	prev := 0

	m, err := dateRe.FindRunesMatch(runes)
	for ; m != nil && err == nil; m, err = dateRe.FindNextMatch(m) {
		if m.Index > prev {
			out = append(out, Segment{Text: string(runes[prev:m.Index])})
		}
		out = append(out, Segment{Text: m.String(), Date: true})
		prev = m.Index + m.Length
	}
	if err != nil {
		return nil, fmt.Errorf("segment: match: %w", err)
	}
	if prev < len(runes) {
		out = append(out, Segment{Text: string(runes[prev:])})
	}
	return out, nil
}

// ParseDate decodes a day/month/year token into UTC midnight of that day.
func ParseDate(token string) (time.Time, error) {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, &apperr.ParseError{Token: token, Err: fmt.Errorf("expected day/month/year")}
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, &apperr.ParseError{Token: token, Err: err}
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 {
		return time.Time{}, &apperr.ParseError{Token: token, Err: fmt.Errorf("month %d out of range", month)}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow, so a mismatch means the day was invalid.
	if day < 1 || t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, &apperr.ParseError{Token: token, Err: fmt.Errorf("day %d out of range", day)}
	}
	return t, nil
}

// Split segments text into one record per dated section. A date followed
// only by whitespace, or by nothing, still yields a record with empty
// content unless another date replaces it first.
//
// An invalid calendar date fails the whole document with *apperr.ParseError.
func Split(text string) ([]models.NoteRecord, error) {
	segs, err := Tokens(text)
	if err != nil {
		return nil, err
	}

	var (
		records []models.NoteRecord
		pending *time.Time
	)
	for _, s := range segs {
		if s.Date {
			t, err := ParseDate(s.Text)
			if err != nil {
				return nil, err
			}
			pending = &t
			continue
		}
		if pending == nil {
			continue
		}
		content := strings.TrimSpace(s.Text)
		if content == "" {
			continue
		}
		records = append(records, models.NoteRecord{
			Timestamp: models.FormatTimestamp(*pending),
			Content:   content,
		})
		pending = nil
	}
	if pending != nil {
		records = append(records, models.NoteRecord{
			Timestamp: models.FormatTimestamp(*pending),
		})
	}
	return records, nil
}
