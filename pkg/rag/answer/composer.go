package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pergunte-ao-passado/pkg/llm"
	"pergunte-ao-passado/pkg/retry"
	"pergunte-ao-passado/pkg/store"
)

// System persona for every generation call. Cravo only knows what the
// retrieved context tells him.
const personaPrompt = `Tu és o Cravo, um professor de História simpático e entusiasta.
Ajudas o utilizador a descobrir mais sobre a revolução do 25 de Abril de 1974 em Portugal.
Falas como um professor de História interessante e acessível.
Se responderes noutra língua que não o português, menciona que a informação de base está em português e podem ocorrer imprecisões de tradução.
Se falares português, usa sempre o português de Portugal continental.`

// Composer turns retrieved context plus the normalized query into a
// grounded answer.
type Composer struct {
	llmProvider llm.Provider
	logger      *log.Logger

	Temperature float64
	MaxTokens   int
	Policy      retry.Policy
}

func NewComposer(llmProvider llm.Provider, logger *log.Logger, temperature float64, maxTokens int) *Composer {
	if temperature <= 0 {
		temperature = 0.7
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Composer{
		llmProvider: llmProvider,
		logger:      logger,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Policy:      retry.DefaultPolicy(),
	}
}

// Compose generates the grounded answer. hadSources reports whether any
// retrieved context backed the generation; with no sources the prompt
// forbids fabricated citations and the caller renders no sources block.
func (c *Composer) Compose(ctx context.Context, query string, items []store.RetrievedItem, languageInstruction string) (string, bool, error) {
	hadSources := len(items) > 0

	prompt := c.buildPrompt(query, items, languageInstruction)

	history := []llm.Message{
		{Role: "system", Content: personaPrompt},
		{Role: "user", Content: prompt},
	}

	var response string
	err := c.Policy.Do(ctx, func() error {
		r, err := c.llmProvider.Chat(ctx, history,
			llm.WithTemperature(c.Temperature),
			llm.WithMaxTokens(c.MaxTokens),
		)
		if err != nil {
			return err
		}
		response = r
		return nil
	})
	if err != nil {
		return "", hadSources, fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}

	c.logger.Printf("[GENERATION] Answer composed from %d source(s)", len(items))
	return response, hadSources, nil
}

func (c *Composer) buildPrompt(query string, items []store.RetrievedItem, languageInstruction string) string {
	var prompt strings.Builder

	// 1. Context block: one entry per retrieved document
	prompt.WriteString("<context>\n")
	if len(items) == 0 {
		prompt.WriteString("No relevant documents were found for this question.\n")
	} else {
		for _, item := range items {
			prompt.WriteString(fmt.Sprintf("Document ID: %s (Relevance: %.2f)\n", item.ID, item.Similarity()))
			prompt.WriteString(fmt.Sprintf("Content: %s\n", item.Content))
			if rendered := RenderMetadata(item.Metadata); rendered.Text != "" {
				prompt.WriteString("Metadata: ")
				prompt.WriteString(rendered.Text)
				prompt.WriteString("\n")
			}
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("</context>\n\n")

	// 2. Question
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_question>\n\n")

	// 3. Grounding and structure rules
	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("Answer the question using ONLY the documents in <context>.\n")
	if len(items) == 0 {
		prompt.WriteString("There are no documents: say clearly that you found nothing relevant in the archive. Do NOT invent facts and do NOT cite or fabricate any sources.\n")
	} else {
		prompt.WriteString("If the documents do not contain the needed information, say so clearly. Do not make up information or use knowledge beyond the documents.\n")
	}
	prompt.WriteString("\nStructure the answer as:\n")
	prompt.WriteString("1. A direct answer to the question.\n")
	prompt.WriteString("2. The historical context around it.\n")
	prompt.WriteString("3. Supporting detail drawn from the documents.\n")
	prompt.WriteString("4. Mention which documents support the answer (by their Document ID). Do NOT output links; the sources list is rendered separately.\n")
	prompt.WriteString("\n")
	prompt.WriteString(languageInstruction)
	prompt.WriteString("\n</task_instructions>\n\n")

	prompt.WriteString("Answer:")

	return prompt.String()
}
