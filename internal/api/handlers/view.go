package handlers

import (
	"html/template"
	"net/http"

	"github.com/wonny/fixconv/internal/fix"
)

var explainPage = template.Must(template.New("explain").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>FIX message explained</title></head>
<body>
<form method="get" action="/explain">
  <input type="text" name="msg" size="120" value="{{.Message}}">
  <button type="submit">Explain</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Fields}}
<table id="fields">
  <thead><tr><th>Tag</th><th>Value</th><th>Explanation</th></tr></thead>
  <tbody>
  {{range .Fields}}<tr{{if eq .Explanation "Unknown field"}} class="unknown"{{end}}><td class="tag">{{.Tag}}</td><td class="value">{{.Value}}</td><td class="explanation">{{.Explanation}}</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}
</body>
</html>
`))

type explainView struct {
	Message string
	Fields  []fix.AnnotatedField
	Error   string
}

// ExplainView renders an HTML table of the annotated message for human inspection.
// Without ?msg= only the input form is shown.
// GET /explain
func (h *FixHandler) ExplainView(w http.ResponseWriter, r *http.Request) {
	view := explainView{Message: r.URL.Query().Get("msg")}
	status := http.StatusOK

	if view.Message != "" {
		fields, err := h.explain(view.Message)
		if err != nil {
			view.Error = err.Error()
			status = http.StatusBadRequest
		}
		view.Fields = fields
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := explainPage.Execute(w, view); err != nil {
		h.logger.WithError(err).Error("Failed to render explain view")
	}
}
