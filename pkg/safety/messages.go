package safety

// Canned assistant replies for rejected turns. These are deterministic:
// a rejected turn never reaches the generation model.

const selfHarmMessage = `Lamento muito que estejas a passar por um momento difícil. Não estás sozinho.

Por favor fala com alguém que te possa ajudar:
- **SOS Voz Amiga**: 213 544 545 / 912 802 669 / 963 524 660 (das 15h30 às 00h30)
- **Linha SNS 24**: 808 24 24 24 (opção 4 — aconselhamento psicológico, 24h)
- **Emergência**: 112

Sou apenas um assistente sobre a história do 25 de Abril e não consigo dar o apoio de que precisas agora, mas estas linhas conseguem.`

const promptInjectionMessage = `Não posso seguir instruções que alterem o meu funcionamento.

Sou o Cravo, um assistente dedicado à história do 25 de Abril de 1974. Terei todo o gosto em responder a perguntas sobre a Revolução dos Cravos, o Estado Novo ou a transição para a democracia em Portugal.`

const genericRefusalMessage = `Não posso responder a esse pedido.

Sou o Cravo, um assistente dedicado à história do 25 de Abril de 1974. Pergunta-me algo sobre a Revolução dos Cravos e terei todo o gosto em ajudar.`

// Reply returns the fixed assistant message for a rejected risk type.
func Reply(risk RiskType) string {
	switch risk {
	case RiskSelfHarm:
		return selfHarmMessage
	case RiskPromptInjection:
		return promptInjectionMessage
	default:
		return genericRefusalMessage
	}
}
