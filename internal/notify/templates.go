package notify

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var textTemplate = texttemplate.Must(texttemplate.New("text").Parse( //nolint: gochecknoglobals
	`{{.Subject}} (Scan vom {{.Time}})
{{range .Rows}}
{{.Title}} [{{.Category}}]
  Preis: {{.Price}} | Marktwert: {{.Market}} | Gewinn: {{.Profit}} | ROI: {{.ROI}}
  {{.URL}}
{{end}}`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Parse( //nolint: gochecknoglobals
	`<h2>{{.Subject}}</h2>
<p>Scan vom {{.Time}}, Mindest-ROI {{.MinROI}} %</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><th align="left">Artikel</th><th>Kategorie</th><th>Preis</th><th>Marktwert</th><th>Gewinn</th><th>ROI</th></tr>
{{range .Rows}}<tr>
<td><a href="{{.URL}}">{{.Title}}</a></td><td>{{.Category}}</td><td>{{.Price}}</td><td>{{.Market}}</td><td>{{.Profit}}</td><td>{{.ROI}}</td>
</tr>
{{end}}</table>`))
