package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/newsdigest/internal/digest"
)

func sectionDate(s digest.Section, loc *time.Location) string {
	if s.Item.Published.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return s.Item.Published.In(loc).Format("2006-01-02")
}

// Markdown renders sections as level-three headings with an open link and
// a bullet list each. Text is written as is.
func Markdown(sections []digest.Section, loc *time.Location) string {
	if len(sections) == 0 {
		return NoSelection + "\n"
	}
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		head := []string{s.Item.Title}
		if s.Item.Source != "" {
			head = append(head, s.Item.Source)
		}
		if d := sectionDate(s, loc); d != "" {
			head = append(head, d)
		}
		fmt.Fprintf(&b, "### %s\n", strings.Join(head, " · "))
		if s.Item.URL != "" {
			fmt.Fprintf(&b, "[open](%s)\n", s.Item.URL)
		}
		b.WriteString("\n")
		for _, bullet := range s.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
	}
	return b.String()
}
