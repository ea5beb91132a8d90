package render

import (
	"html/template"
	"io"
	"time"

	"github.com/hyperifyio/newsdigest/internal/digest"
)

var page = template.Must(template.New("digest").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- if not .Sections}}
<p class="meta">{{.Empty}}</p>
{{- end}}
{{- range .Sections}}
<div class="deep-section">
<h4>{{.Title}} <span class="meta">{{if .Source}}· {{.Source}} {{end}}{{if .Date}}· {{.Date}}{{end}}</span>{{if .URL}} <a href="{{.URL}}" target="_blank" rel="noopener">open</a>{{end}}</h4>
<ul>
{{- range .Bullets}}
<li>{{.}}</li>
{{- end}}
</ul>
</div>
{{- end}}
</body>
</html>
`))

type htmlSection struct {
	Title, Source, Date, URL string
	Bullets                  []string
}

// HTML writes sections as a standalone page. All text is escaped.
func HTML(w io.Writer, title string, sections []digest.Section, loc *time.Location) error {
	data := struct {
		Title    string
		Empty    string
		Sections []htmlSection
	}{Title: title, Empty: NoSelection}
	for _, s := range sections {
		data.Sections = append(data.Sections, htmlSection{
			Title:   s.Item.Title,
			Source:  s.Item.Source,
			Date:    sectionDate(s, loc),
			URL:     s.Item.URL,
			Bullets: s.Bullets,
		})
	}
	return page.Execute(w, data)
}
