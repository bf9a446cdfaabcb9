package models

// EvaluationScores holds the three lexical quality metrics, each in [0, 1].
type EvaluationScores struct {
	Faithfulness     float64 `json:"faithfulness"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
}

// EvaluationRecord is the outcome of evaluating a single question.
type EvaluationRecord struct {
	Question            string           `json:"question"`
	Answer              string           `json:"answer"`
	Scores              EvaluationScores `json:"scores"`
	ResponseTimeSeconds float64          `json:"response_time_seconds"`
	VectorResults       int              `json:"vector_results"`
	WebResults          int              `json:"web_results"`
	Timestamp           string           `json:"timestamp"`
	Error               string           `json:"error,omitempty"`
}

// EvaluationSummary averages the per-question metrics over a run.
type EvaluationSummary struct {
	TotalQuestions         int     `json:"total_questions"`
	AvgFaithfulness        float64 `json:"avg_faithfulness"`
	AvgAnswerRelevancy     float64 `json:"avg_answer_relevancy"`
	AvgContextPrecision    float64 `json:"avg_context_precision"`
	AvgResponseTimeSeconds float64 `json:"avg_response_time_seconds"`
}

// EvaluationReport is a full evaluation run: one record per question
// plus the averaged summary.
type EvaluationReport struct {
	Results   []EvaluationRecord `json:"results"`
	Summary   EvaluationSummary  `json:"summary"`
	Timestamp string             `json:"timestamp"`
}
