package api

import (
	"embed"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed docs/usage.md
var docsFiles embed.FS

const helpPageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Grade sheet converter: usage</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; text-align: left; }
code { background: #f3f3f3; padding: 0 0.2rem; }
</style>
</head>
<body>
`

const helpPageTail = `<p><a href="/">Back to upload</a></p>
</body>
</html>
`

// renderHelp converts the embedded usage notes to a standalone HTML page
func renderHelp() ([]byte, error) {
	md, err := docsFiles.ReadFile("docs/usage.md")
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	body := markdown.ToHTML(md, p, renderer)

	page := make([]byte, 0, len(helpPageHead)+len(body)+len(helpPageTail))
	page = append(page, helpPageHead...)
	page = append(page, body...)
	page = append(page, helpPageTail...)
	return page, nil
}

func (s *Server) handleHelp(c *gin.Context) {
	if s.helpPage == nil {
		c.String(http.StatusNotFound, "usage page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.helpPage)
}

func loadHelpPage() []byte {
	page, err := renderHelp()
	if err != nil {
		log.Printf("[Static] Error rendering usage page: %v", err)
		return nil
	}
	return page
}
