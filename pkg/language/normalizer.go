package language

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"pergunte-ao-passado/pkg/llm"
	"pergunte-ao-passado/pkg/retry"
)

// CodeUnknown is returned whenever detection fails. Downstream it maps to
// the "answer in the user's language" instruction.
const CodeUnknown = "unknown"

// Normalizer detects the query language and translates foreign-language
// queries into the corpus language before retrieval. The corpus is
// Portuguese; English queries retrieve noticeably worse untranslated, so
// they get a translation pre-pass. Every failure is soft: the worst case
// is retrieving with the original query.
type Normalizer struct {
	llmProvider llm.Provider
	logger      *log.Logger

	// TargetCode is the corpus language, ForeignCode the language that
	// triggers translation.
	TargetCode  string
	ForeignCode string
	Policy      retry.Policy
}

func NewNormalizer(llmProvider llm.Provider, logger *log.Logger) *Normalizer {
	return &Normalizer{
		llmProvider: llmProvider,
		logger:      logger,
		TargetCode:  "pt",
		ForeignCode: "en",
		Policy:      retry.DefaultPolicy(),
	}
}

var isoCodeRe = regexp.MustCompile(`^[a-z]{2}$`)

// Normalize returns the query to retrieve with and the detected language
// code. The returned query differs from the input only when a translation
// pass ran; the returned code is always the DETECTED one, so the answer
// composer can still reply in the user's language.
func (n *Normalizer) Normalize(ctx context.Context, query string) (string, string) {
	code, err := n.detect(ctx, query)
	if err != nil {
		n.logger.Printf("[LANGUAGE] Detection failed, passing query through: %v", err)
		return query, CodeUnknown
	}

	if code != n.ForeignCode || code == n.TargetCode {
		return query, code
	}

	translated, err := n.translate(ctx, query)
	if err != nil {
		n.logger.Printf("[LANGUAGE] Translation failed, passing query through: %v", err)
		return query, code
	}

	n.logger.Printf("[LANGUAGE] Translated %s query for retrieval", code)
	return translated, code
}

func (n *Normalizer) detect(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(
		"Identify the language of the text below.\nRespond with ONLY the two-letter ISO 639-1 code (e.g. pt, en, es), nothing else.\n\nText:\n%s",
		query,
	)

	response, err := n.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	code := strings.ToLower(strings.TrimSpace(response))
	if !isoCodeRe.MatchString(code) {
		return "", fmt.Errorf("unexpected language id response: %q", response)
	}
	return code, nil
}

func (n *Normalizer) translate(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the question below into European Portuguese (Portugal).\nRespond with ONLY the translated question, nothing else.\n\nQuestion:\n%s",
		query,
	)

	response, err := n.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	translated := strings.TrimSpace(response)
	if translated == "" {
		return "", fmt.Errorf("empty translation response")
	}
	return translated, nil
}

// generate issues one retried LLM call. Fail-soft handling stays with the
// callers; retries only cover the transport.
func (n *Normalizer) generate(ctx context.Context, prompt string) (string, error) {
	var response string
	err := n.Policy.Do(ctx, func() error {
		r, err := n.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
		if err != nil {
			return err
		}
		response = r
		return nil
	})
	return response, err
}

// Instruction maps a detected language code to the response-language
// instruction injected into the generation prompt.
func (n *Normalizer) Instruction(code string) string {
	switch code {
	case n.ForeignCode:
		return "Respond in English, but mention that the source material is in Portuguese, so slight translation nuances may occur."
	case n.TargetCode:
		return "Responde em português de Portugal (português europeu)."
	default:
		return "Respond in the same language as the user's question."
	}
}
