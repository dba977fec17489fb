package gemini

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"pdf-assistant-api/internal/ai"
)

var (
	//go:embed prompts/analyze.txt
	analyzeTemplate string
	//go:embed prompts/chat_document.txt
	chatDocumentTemplate string
	//go:embed prompts/chat.txt
	chatTemplate string
	//go:embed prompts/ask_all.txt
	askAllTemplate string
)

func analyzePrompt(fileName, text string, pages int) string {
	return strings.NewReplacer(
		"{{PAGE_COUNT}}", strconv.Itoa(pages),
		"{{FILE_NAME}}", fileName,
		"{{DOCUMENT_TEXT}}", text,
	).Replace(analyzeTemplate)
}

func chatDocumentPrompt(text, question string, history []ai.Turn) string {
	return strings.NewReplacer(
		"{{DOCUMENT_TEXT}}", text,
		"{{HISTORY}}", formatHistory(history),
		"{{QUESTION}}", question,
	).Replace(chatDocumentTemplate)
}

func chatPrompt(message string, history []ai.Turn) string {
	return strings.NewReplacer(
		"{{HISTORY}}", formatHistory(history),
		"{{MESSAGE}}", message,
	).Replace(chatTemplate)
}

func askAllPrompt(question string, docs []ai.Digest) string {
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s (%s)\n   Category: %s\n   Keywords: %s\n   Summary: %s\n",
			i+1, d.Title, d.OriginalName, d.Category, strings.Join(d.Keywords, ", "), d.Summary)
	}
	return strings.NewReplacer(
		"{{DOCUMENT_COUNT}}", strconv.Itoa(len(docs)),
		"{{DOCUMENTS}}", b.String(),
		"{{QUESTION}}", question,
	).Replace(askAllTemplate)
}

func formatHistory(history []ai.Turn) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, t := range history {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
