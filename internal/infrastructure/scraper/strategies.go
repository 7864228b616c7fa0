package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/extract"
)

const (
	titlePlaceholder    = "Título não encontrado"
	subtitlePlaceholder = "Subtítulo não encontrado"
	contentPlaceholder  = "Não foi possível extrair o conteúdo deste artigo. Consulte a fonte original."

	titleSelector     = "h1.mainTitle"
	subtitleSelector  = "span.subTitle"
	paragraphSelector = ".text_editor_paragraph"
	paragraphSpans    = `span[data-text="true"]`
	mainImageIDPrefix = `img[id^="ReduxEditableImage_ArticleImageData"]`
	mediaContainer    = "div.mainMedia"
	contentContainer  = "div.mainContent"
)

// Lines containing any of these are dropped from extracted article bodies.
var boilerplateDenylist = []string{
	"Ynetnews",
	"Google Play",
	"Apple App Store",
	"Facebook",
	"Twitter",
	"Instagram",
	"Telegram",
	"https://bit.ly/",
	"Follow Ynetnews",
	"Get the Ynetnews app",
	"smartphone",
}

var (
	rawTitleExpr    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	rawSubtitleExpr = regexp.MustCompile(`(?is)<span[^>]*class="[^"]*subTitle[^"]*"[^>]*>(.*?)</span>`)
	rawImageExpr    = regexp.MustCompile(`(?i)<meta[^>]+property="og:image"[^>]+content="([^"]+)"`)
	tagExpr         = regexp.MustCompile(`<[^>]+>`)
)

// structuredStrategy reads the source site's known selectors. It is the
// primary, highest-fidelity extraction path.
type structuredStrategy struct {
	images  *ImageFetcher
	cdnHost string
}

func (s *structuredStrategy) Name() string { return "structured" }

func (s *structuredStrategy) Extract(ctx context.Context, page extract.Page) (*domain.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	title := textOrPlaceholder(doc.Find(titleSelector).First(), titlePlaceholder)
	subtitle := textOrPlaceholder(doc.Find(subtitleSelector).First(), subtitlePlaceholder)

	var content strings.Builder
	doc.Find(paragraphSelector).Each(func(i int, paragraph *goquery.Selection) {
		paragraph.Find(paragraphSpans).Each(func(j int, span *goquery.Selection) {
			text := strings.TrimSpace(span.Text())
			if text != "" {
				content.WriteString(text)
				content.WriteString("\n\n")
			}
		})
	})

	body := filterBoilerplate(content.String())
	if body == "" {
		// Broader paragraph scan when the known container yields nothing.
		var broad strings.Builder
		doc.Find("p").Each(func(i int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if text != "" {
				broad.WriteString(text)
				broad.WriteString("\n\n")
			}
		})
		body = filterBoilerplate(broad.String())
	}

	if body == "" && title == titlePlaceholder {
		return nil, nil
	}

	article := &domain.ExtractedArticle{
		URL:         page.URL,
		Title:       title,
		Description: subtitle,
		Content:     body,
	}

	s.resolveImages(ctx, doc, article)
	return article, nil
}

// resolveImages probes for the principal image and collects in-body images,
// each resolved to a local path through the image fetcher.
func (s *structuredStrategy) resolveImages(ctx context.Context, doc *goquery.Document, article *domain.ExtractedArticle) {
	mainURL := s.findMainImage(doc)
	if mainURL != "" {
		article.MainImage = domain.ImageRef{
			OriginalURL: mainURL,
			LocalPath:   s.images.Save(ctx, mainURL, article.Title),
		}
	}

	doc.Find(contentContainer + " img").Each(func(i int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" || src == mainURL {
			return
		}
		localPath := s.images.Save(ctx, src, article.Title+"-content-img")
		if localPath == "" {
			return
		}
		article.ContentImages = append(article.ContentImages, domain.ImageRef{
			OriginalURL: src,
			LocalPath:   localPath,
		})
	})
}

func (s *structuredStrategy) findMainImage(doc *goquery.Document) string {
	if src, ok := doc.Find(mainImageIDPrefix).First().Attr("src"); ok && src != "" {
		return src
	}

	if src, ok := doc.Find(mediaContainer).First().Find("img").First().Attr("src"); ok && src != "" {
		return src
	}

	// Heuristic: any image hosted on the source's CDN.
	var found string
	doc.Find("img").EachWithBreak(func(i int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if ok && s.cdnHost != "" && strings.Contains(src, s.cdnHost) {
			found = src
			return false
		}
		return true
	})
	return found
}

// readabilityStrategy runs a generic article-body heuristic when the
// site-specific selectors fail, trading fidelity for coverage.
type readabilityStrategy struct{}

func (r *readabilityStrategy) Name() string { return "readability" }

func (r *readabilityStrategy) Extract(ctx context.Context, page extract.Page) (*domain.ExtractedArticle, error) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	parsed, err := readability.FromReader(bytes.NewReader(page.HTML), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	body := filterBoilerplate(parsed.TextContent)
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = titlePlaceholder
	}

	subtitle := strings.TrimSpace(parsed.Excerpt)
	if subtitle == "" {
		subtitle = subtitlePlaceholder
	}

	article := &domain.ExtractedArticle{
		URL:         page.URL,
		Title:       title,
		Description: subtitle,
		Content:     body,
	}

	if parsed.Image != "" {
		article.MainImage = domain.ImageRef{OriginalURL: parsed.Image}
	}

	return article, nil
}

// regexStrategy is the last-resort, reduced-fidelity path: title, subtitle
// and principal image are pulled by regex from the raw HTML and the body is
// a placeholder pointing at the original. Partial data beats dropping the
// article entirely.
type regexStrategy struct {
	images *ImageFetcher
}

func (r *regexStrategy) Name() string { return "regex" }

func (r *regexStrategy) Extract(ctx context.Context, page extract.Page) (*domain.ExtractedArticle, error) {
	raw := string(page.HTML)

	title := titlePlaceholder
	if m := rawTitleExpr.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(tagExpr.ReplaceAllString(m[1], ""))
	}
	if title == "" {
		title = titlePlaceholder
	}

	subtitle := subtitlePlaceholder
	if m := rawSubtitleExpr.FindStringSubmatch(raw); m != nil {
		subtitle = strings.TrimSpace(tagExpr.ReplaceAllString(m[1], ""))
	}

	article := &domain.ExtractedArticle{
		URL:         page.URL,
		Title:       title,
		Description: subtitle,
		Content:     contentPlaceholder,
	}

	if m := rawImageExpr.FindStringSubmatch(raw); m != nil {
		article.MainImage = domain.ImageRef{
			OriginalURL: m[1],
			LocalPath:   r.images.Save(ctx, m[1], title),
		}
	}

	return article, nil
}

// filterBoilerplate drops lines containing denylisted fragments and
// collapses runs of blank lines left behind.
func filterBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		unwanted := false
		for _, fragment := range boilerplateDenylist {
			if strings.Contains(line, fragment) {
				unwanted = true
				break
			}
		}
		if !unwanted {
			kept = append(kept, line)
		}
	}

	filtered := strings.Join(kept, "\n")
	for strings.Contains(filtered, "\n\n\n") {
		filtered = strings.ReplaceAll(filtered, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(filtered)
}

func textOrPlaceholder(sel *goquery.Selection, placeholder string) string {
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return placeholder
	}
	return text
}
