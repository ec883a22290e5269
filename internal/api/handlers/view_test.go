package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderView(t *testing.T, msg string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	h, _ := newTestFixHandler()

	target := "/explain"
	if msg != "" {
		target += "?msg=" + url.QueryEscape(msg)
	}
	rec := httptest.NewRecorder()
	h.ExplainView(rec, httptest.NewRequest("GET", target, nil))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return rec, doc
}

func TestExplainView_Table(t *testing.T) {
	rec, doc := renderView(t, "8=FIX.4.4|39=0|58=<b>hi</b>")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rows := doc.Find("#fields tbody tr")
	require.Equal(t, 3, rows.Length())

	first := rows.Eq(0)
	assert.Equal(t, "8", first.Find("td.tag").Text())
	assert.Equal(t, "FIX.4.4", first.Find("td.value").Text())
	assert.Equal(t, "BeginString (FIX version)", first.Find("td.explanation").Text())

	last := rows.Eq(2)
	assert.True(t, last.HasClass("unknown"))
	assert.Equal(t, "<b>hi</b>", last.Find("td.value").Text(), "value must be escaped, not rendered")
	assert.Equal(t, 0, last.Find("td.value b").Length())

	val, _ := doc.Find("input[name=msg]").Attr("value")
	assert.Equal(t, "8=FIX.4.4|39=0|58=<b>hi</b>", val)
}

func TestExplainView_FormOnly(t *testing.T) {
	rec, doc := renderView(t, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, doc.Find("form").Length())
	assert.Equal(t, 0, doc.Find("#fields").Length())
}

func TestExplainView_Malformed(t *testing.T) {
	rec, doc := renderView(t, "8=FIX.4.4|nope")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, doc.Find("p.error").Text(), "missing '='")
	assert.Equal(t, 0, doc.Find("#fields").Length())
}
