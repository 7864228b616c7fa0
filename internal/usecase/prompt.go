package usecase

import (
	"fmt"

	"NewsBridge/internal/domain"
)

const (
	translationSystemPrompt = "Você é um assistente especializado em tradução e adaptação de artigos de notícias para o português brasileiro. Responda apenas com JSON válido."
	rescueSystemPrompt      = "Você é um tradutor profissional do inglês para o português."
)

// buildTranslationPrompt embeds the original article into the structured
// translation task. The response shape is enforced twice: by the prompt and
// by the API's JSON response-format flag.
func buildTranslationPrompt(article domain.ScrapedArticle, content string) string {
	description := article.Description
	if description == "" {
		description = "Sem descrição disponível"
	}

	return fmt.Sprintf(`Traduza e reescreva o seguinte artigo de notícias do inglês para o português brasileiro. É EXTREMAMENTE IMPORTANTE que você traduza completamente o conteúdo, não deixe NADA em inglês.

REGRAS IMPORTANTES:
1. Traduza o conteúdo COMPLETO para português brasileiro fluente
2. Mantenha o mesmo significado, mas adapte para o público brasileiro
3. Use um tom jornalístico profissional
4. Não omita informações importantes do original
5. Use parágrafos para separar o conteúdo e facilitar a leitura
6. O conteúdo deve ter pelo menos 500 caracteres
7. Escolha 10 hashtags relevantes para o assunto do artigo, em português
8. Identifique 5 palavras-chave principais relacionadas ao artigo
9. Retorne APENAS o JSON como resposta, sem nenhum texto adicional

TÍTULO ORIGINAL: %s

DESCRIÇÃO ORIGINAL: %s

CONTEÚDO ORIGINAL:
%s

FORMATO OBRIGATÓRIO DA RESPOSTA (apenas JSON, sem texto antes ou depois):
{
  "title": "Título completo traduzido em português",
  "excerpt": "Resumo do artigo em português (150-200 caracteres)",
  "content": "Conteúdo completo em português, separado em parágrafos. Deve conter toda a informação do original, mas em português.",
  "metaTitle": "Título SEO (até 60 caracteres)",
  "metaDescription": "Descrição SEO (até 160 caracteres)",
  "hashtags": ["hashtag1", "hashtag2", "hashtag3", "hashtag4", "hashtag5", "hashtag6", "hashtag7", "hashtag8", "hashtag9", "hashtag10"],
  "keywords": ["palavra-chave1", "palavra-chave2", "palavra-chave3", "palavra-chave4", "palavra-chave5"]
}

LEMBRE-SE: O campo "content" deve conter TODO o conteúdo traduzido, não apenas um resumo.`,
		article.Title, description, content)
}

// buildRescuePrompt is the simplified translation-only prompt used when the
// structured response still looks like the untranslated original.
func buildRescuePrompt(content string) string {
	return fmt.Sprintf(`Traduza o seguinte texto do inglês para o português brasileiro:

%s`, content)
}
