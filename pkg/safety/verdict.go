package safety

// RiskType classifies why a query was flagged
type RiskType string

const (
	RiskNone            RiskType = "none"
	RiskSelfHarm        RiskType = "self_harm"
	RiskPromptInjection RiskType = "prompt_injection"
)

// Confidence grades how sure the gate is about the verdict
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Verdict is the per-query classification result. It is never persisted.
type Verdict struct {
	IsSafe     bool
	Risk       RiskType
	Confidence Confidence
	Reasoning  string
}

func safeVerdict(confidence Confidence, reasoning string) Verdict {
	return Verdict{IsSafe: true, Risk: RiskNone, Confidence: confidence, Reasoning: reasoning}
}

func riskVerdict(risk RiskType, confidence Confidence, reasoning string) Verdict {
	return Verdict{IsSafe: false, Risk: risk, Confidence: confidence, Reasoning: reasoning}
}
