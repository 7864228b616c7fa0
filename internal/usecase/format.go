package usecase

import (
	"strings"
)

const (
	originalMarker  = "[Conteúdo Original]"
	automaticMarker = "[Tradução automática]"

	warningBanner = `<div class="translation-warning" style="background-color: #f8d7da; padding: 10px; margin-bottom: 20px; border-left: 4px solid #dc3545;">
<p><strong>Aviso:</strong> Não foi possível traduzir este artigo adequadamente. Exibindo conteúdo original.</p>
</div>`

	automaticBanner = `<div class="translation-note" style="background-color: #fffbea; padding: 10px; margin-bottom: 20px; border-left: 4px solid #ffa000;">
<p><strong>Nota:</strong> Este artigo foi processado por tradução automática e pode conter imperfeições.</p>
</div>`
)

// wrapParagraphs converts plain text into paragraph markup. Content that
// already carries paragraph or div tags passes through untouched.
func wrapParagraphs(content string) string {
	if strings.Contains(content, "<p>") || strings.Contains(content, "<div>") {
		return content
	}

	var wrapped []string
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			wrapped = append(wrapped, "<p>"+block+"</p>")
		}
	}
	return strings.Join(wrapped, "\n")
}

// originalContentFallback renders the untranslated original body behind a
// visible warning banner. Used when formatting leaves next to nothing.
func originalContentFallback(rewritten string) string {
	var paragraphs []string
	for _, block := range strings.Split(rewritten, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, "<p>"+block+"</p>")
		}
	}

	return warningBanner + "\n<div class=\"original-content\">\n" +
		strings.Join(paragraphs, "\n") + "\n</div>"
}

// prependAutomaticNote marks content that still looks machine-translated.
func prependAutomaticNote(content string) string {
	return automaticBanner + "\n" + content
}

// appendTitleMarker suffixes the title once with the given marker.
func appendTitleMarker(title, marker string) string {
	if strings.Contains(title, marker) {
		return title
	}
	return title + " " + marker
}
