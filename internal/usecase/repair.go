package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"NewsBridge/internal/domain"
)

const (
	minContentLength = 100
	wantHashtags     = 10
	wantKeywords     = 5
	minTitleWordLen  = 3
)

// Rejection reasons for one translation attempt. Both are retryable.
var (
	ErrContentTooShort = errors.New("translated content is too short")
	ErrNotTranslated   = errors.New("content does not look translated")
)

// Pool used to top hashtags up when the model returns fewer than ten.
var defaultHashtags = []string{
	"noticia", "brasil", "internacional", "informacao", "atualidade",
	"mundo", "acontecimento", "ultimasnoticias", "atualizacao", "destaque",
}

var (
	jsonBlockExpr     = regexp.MustCompile(`(?s)\{.*\}`)
	controlCharExpr   = regexp.MustCompile(`[\x00-\x1f]+`)
	trailingCommaExpr = regexp.MustCompile(`,\s*([}\]])`)
	asciiOnlyExpr     = regexp.MustCompile(`^[a-zA-Z0-9\s.,!?:;()\-"']+$`)
	accentedExpr      = regexp.MustCompile(`[áàâãéèêíïóôõöúüçÁÀÂÃÉÈÊÍÏÓÔÕÖÚÜÇ]`)
	nonSlugExpr       = regexp.MustCompile(`[^\w\s]`)
	slugSpaceExpr     = regexp.MustCompile(`\s+`)
)

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "a", "À", "a", "Â", "a", "Ã", "a", "Ä", "a",
	"É", "e", "È", "e", "Ê", "e", "Ë", "e",
	"Í", "i", "Ì", "i", "Î", "i", "Ï", "i",
	"Ó", "o", "Ò", "o", "Ô", "o", "Õ", "o", "Ö", "o",
	"Ú", "u", "Ù", "u", "Û", "u", "Ü", "u",
	"Ç", "c", "Ñ", "n",
)

// parseTranslation decodes the raw completion text. On malformed JSON it
// salvages in two steps: extract the first {...} block, then strip control
// characters and trailing commas before braces/brackets.
func parseTranslation(raw string) (domain.TranslatedArticle, error) {
	var parsed domain.TranslatedArticle
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, nil
	}

	block := jsonBlockExpr.FindString(raw)
	if block == "" {
		return parsed, fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(block), &parsed); err == nil {
		return parsed, nil
	}

	cleaned := controlCharExpr.ReplaceAllString(block, "")
	cleaned = trailingCommaExpr.ReplaceAllString(cleaned, "$1")
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return parsed, fmt.Errorf("unparseable response: %w", err)
	}

	return parsed, nil
}

// backfillFields fills any missing required field with a default derived
// from the original article instead of failing the attempt.
func backfillFields(t *domain.TranslatedArticle, article domain.ScrapedArticle, rewritten string) {
	if t.Title == "" {
		t.Title = article.Title + " [Tradução automática]"
	}
	if t.Excerpt == "" {
		if article.Description != "" {
			t.Excerpt = truncate(article.Description, 200)
		} else {
			t.Excerpt = fmt.Sprintf("Artigo traduzido de %s", article.Source)
		}
	}
	if t.Content == "" {
		t.Content = rewritten
	}
	if t.MetaTitle == "" {
		t.MetaTitle = truncate(t.Title, 60)
	}
	if t.MetaDescription == "" {
		t.MetaDescription = truncate(t.Excerpt, 160)
	}
}

// checkQuality rejects an attempt whose content is too short or still looks
// like source-language text (ASCII only, no accented Latin characters).
func checkQuality(t domain.TranslatedArticle) error {
	if len(t.Content) < minContentLength {
		return ErrContentTooShort
	}

	head := truncate(t.Content, 100)
	if asciiOnlyExpr.MatchString(head) || !accentedExpr.MatchString(t.Content) {
		return ErrNotTranslated
	}

	return nil
}

// completeHashtags tops the list up to exactly ten, first from significant
// title words, then from the fixed default pool, skipping duplicates.
func completeHashtags(t *domain.TranslatedArticle) {
	if len(t.Hashtags) >= wantHashtags {
		t.Hashtags = t.Hashtags[:wantHashtags]
		return
	}

	present := make(map[string]bool, wantHashtags)
	for _, tag := range t.Hashtags {
		present[tag] = true
	}

	push := func(tag string) {
		if len(t.Hashtags) < wantHashtags && tag != "" && !present[tag] {
			t.Hashtags = append(t.Hashtags, tag)
			present[tag] = true
		}
	}

	for _, word := range strings.Fields(t.Title) {
		if len(t.Hashtags) >= wantHashtags {
			break
		}
		if len([]rune(word)) > minTitleWordLen {
			push(stripDiacritics(strings.ToLower(word)))
		}
	}

	for _, tag := range defaultHashtags {
		if len(t.Hashtags) >= wantHashtags {
			break
		}
		push(tag)
	}
}

// completeKeywords borrows from the hashtag list until at least five exist.
func completeKeywords(t *domain.TranslatedArticle) {
	if len(t.Keywords) >= wantKeywords {
		return
	}

	missing := wantKeywords - len(t.Keywords)
	if missing > len(t.Hashtags) {
		missing = len(t.Hashtags)
	}
	t.Keywords = append(t.Keywords, t.Hashtags[:missing]...)
}

// looksLikeOriginal reports whether the first 50 characters of the final
// content equal the first 50 characters of the rewritten original text.
func looksLikeOriginal(original, translated string) bool {
	return strings.TrimSpace(truncate(original, 50)) == strings.TrimSpace(truncate(translated, 50))
}

// fallbackTranslation builds the minimal synthetic record used when every
// translation attempt is exhausted.
func fallbackTranslation(article domain.ScrapedArticle, rewritten string) domain.TranslatedArticle {
	excerpt := fmt.Sprintf("Artigo de %s", article.Source)
	metaDescription := excerpt
	if article.Description != "" {
		excerpt = truncate(article.Description, 200)
		metaDescription = truncate(article.Description, 160)
	}

	t := domain.TranslatedArticle{
		Title:           article.Title + " [Tradução automática]",
		Excerpt:         excerpt,
		Content:         rewritten,
		MetaTitle:       truncate(article.Title, 60),
		MetaDescription: metaDescription,
	}
	completeHashtags(&t)
	completeKeywords(&t)
	return t
}

// Slugify lowercases the title, strips diacritics and non-word characters,
// and joins words with hyphens.
func Slugify(title string) string {
	slug := stripDiacritics(strings.ToLower(title))
	slug = nonSlugExpr.ReplaceAllString(slug, "")
	slug = slugSpaceExpr.ReplaceAllString(strings.TrimSpace(slug), "-")
	return slug
}

func stripDiacritics(s string) string {
	return diacriticReplacer.Replace(s)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
