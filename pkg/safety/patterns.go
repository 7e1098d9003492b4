package safety

import "regexp"

// Stage-1 pattern rules. Queries are lowercased before matching, so the
// patterns are written in lowercase. Portuguese first (corpus language),
// then English. Order matters: the first match wins with high confidence.

var selfHarmPatterns = []*regexp.Regexp{
	// Portuguese
	regexp.MustCompile(`suic[ií]dio`),
	regexp.MustCompile(`suicidar(-me)?`),
	regexp.MustCompile(`matar[- ]me`),
	regexp.MustCompile(`magoar[- ]me`),
	regexp.MustCompile(`fazer mal a mim`),
	regexp.MustCompile(`acabar com a minha vida`),
	regexp.MustCompile(`p[oô]r fim [aà] (minha )?vida`),
	regexp.MustCompile(`n[aã]o quero (continuar a )?viver`),
	regexp.MustCompile(`auto[- ]?mutila`),
	// English
	regexp.MustCompile(`suicide`),
	regexp.MustCompile(`kill myself`),
	regexp.MustCompile(`hurt myself`),
	regexp.MustCompile(`harm myself`),
	regexp.MustCompile(`end my (own )?life`),
	regexp.MustCompile(`self[- ]?harm`),
	regexp.MustCompile(`want to die`),
}

var promptInjectionPatterns = []*regexp.Regexp{
	// Portuguese
	regexp.MustCompile(`ignora (as|todas as) instru[cç][oõ]es( anteriores)?`),
	regexp.MustCompile(`esquece (as|todas as) (tuas )?instru[cç][oõ]es`),
	regexp.MustCompile(`esquece tudo o que te (foi dito|disseram)`),
	regexp.MustCompile(`revela (o teu|as tuas) (prompt|instru[cç][oõ]es)`),
	regexp.MustCompile(`finge que (és|n[aã]o tens)`),
	regexp.MustCompile(`atua como se n[aã]o tivesses regras`),
	// English
	regexp.MustCompile(`ignore (all )?(your |the )?(previous |prior |above )?instructions`),
	regexp.MustCompile(`disregard (all )?(your |the )?(previous |prior )?instructions`),
	regexp.MustCompile(`forget (all )?(your |the )?(previous |prior )?instructions`),
	regexp.MustCompile(`reveal your (system )?prompt`),
	regexp.MustCompile(`you are now dan`),
	regexp.MustCompile(`pretend (that )?you (are|have) no (rules|restrictions)`),
	regexp.MustCompile(`act as if you (are|were) not an? (ai|assistant)`),
	regexp.MustCompile(`jailbreak`),
	regexp.MustCompile(`system prompt override`),
}
