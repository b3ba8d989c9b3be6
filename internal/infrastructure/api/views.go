package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"etsy-receipts/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed docs/swagger.json
var swaggerJSON []byte

var views = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type indexView struct {
	GenerateURL string
	ReceiptURL  string
	ArticleURL  string
	FlowState   string
}

type welcomeView struct {
	FirstName  string
	ReceiptURL string
	ArticleURL string
}

type receiptsView struct {
	Receipts []domain.Receipt
}

// render executes the named view into a buffer so a template error never leaves a half-written page
func render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
