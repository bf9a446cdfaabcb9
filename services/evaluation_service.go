package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/abdullahkazmii/ragserver/models"
)

// Stop words removed before any token-overlap comparison.
var evaluationStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

// Relevancy additionally filters interrogatives, since every question
// contains them and they carry no topical signal.
var relevancyStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
	"what": {}, "how": {}, "when": {}, "where": {}, "why": {},
}

// RAGEvaluator scores answers with heuristic lexical-overlap metrics.
// These are crude proxies for proper grounding evaluation, not
// statistically validated, and are only meant for rough quality checks.
type RAGEvaluator struct {
	ragService RAGService
	store      VectorStore
	topK       int

	mu      sync.Mutex
	history []models.EvaluationReport
}

// EvaluateFaithfulness measures how much of the answer is covered by
// the retrieved context: the stopword-filtered token overlap divided by
// the answer's token count, capped at 1.0.
func (e *RAGEvaluator) EvaluateFaithfulness(answer, contextText string) float64 {
	if contextText == "" || answer == "" {
		return 0.0
	}

	contextWords := tokenSet(contextText, evaluationStopWords)
	answerWords := tokenSet(answer, evaluationStopWords)
	if len(answerWords) == 0 {
		return 0.0
	}

	overlap := intersectionSize(contextWords, answerWords)
	return math.Min(float64(overlap)/float64(len(answerWords)), 1.0)
}

// EvaluateRelevancy measures how well the answer addresses the question:
// token overlap divided by the question's token count, capped at 1.0,
// with a 0.1 bonus for answers of reasonable length (50-500 characters).
// A question with no meaningful tokens left scores a neutral 0.5.
func (e *RAGEvaluator) EvaluateRelevancy(question, answer string) float64 {
	if question == "" || answer == "" {
		return 0.0
	}

	questionWords := tokenSet(question, relevancyStopWords)
	answerWords := tokenSet(answer, relevancyStopWords)
	if len(questionWords) == 0 {
		return 0.5
	}

	overlap := intersectionSize(questionWords, answerWords)
	score := math.Min(float64(overlap)/float64(len(questionWords)), 1.0)

	if len(answer) >= 50 && len(answer) <= 500 {
		score = math.Min(score+0.1, 1.0)
	}
	return score
}

// EvaluateContextPrecision measures what fraction of the retrieved
// chunks are relevant to the question, where relevant means sharing at
// least two meaningful tokens with it.
func (e *RAGEvaluator) EvaluateContextPrecision(question string, retrievedChunks []string) float64 {
	if len(retrievedChunks) == 0 || question == "" {
		return 0.0
	}

	questionWords := tokenSet(question, evaluationStopWords)

	relevant := 0
	for _, chunk := range retrievedChunks {
		chunkWords := tokenSet(chunk, evaluationStopWords)
		if intersectionSize(questionWords, chunkWords) >= 2 {
			relevant++
		}
	}
	return float64(relevant) / float64(len(retrievedChunks))
}

// RunEvaluation answers every question through the RAG pipeline,
// measures response time, scores the three metrics, and returns the
// records plus an averaged summary. The report is appended to the
// in-memory history. A pipeline failure on one question is recorded in
// that question's record and does not abort the run.
func (e *RAGEvaluator) RunEvaluation(ctx context.Context, questions []string, includeWebSearch bool) (*models.EvaluationReport, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no evaluation questions provided")
	}

	results := make([]models.EvaluationRecord, 0, len(questions))
	for i, question := range questions {
		log.Printf("EVAL: Evaluating question %d/%d", i+1, len(questions))

		start := time.Now()
		genResult, genErr := e.ragService.GenerateResponse(ctx, question, includeWebSearch)
		responseTime := time.Since(start).Seconds()

		var retrievedChunks []string
		searchResults, err := e.store.SimilaritySearch(ctx, question, e.topK)
		if err != nil {
			log.Printf("EVAL WARN: Could not retrieve chunks for precision scoring: %v", err)
		} else {
			for _, r := range searchResults {
				retrievedChunks = append(retrievedChunks, r.Document)
			}
		}

		record := models.EvaluationRecord{
			Question: question,
			Answer:   genResult.Response,
			Scores: models.EvaluationScores{
				Faithfulness:     round3(e.EvaluateFaithfulness(genResult.Response, genResult.ContextUsed)),
				AnswerRelevancy:  round3(e.EvaluateRelevancy(question, genResult.Response)),
				ContextPrecision: round3(e.EvaluateContextPrecision(question, retrievedChunks)),
			},
			ResponseTimeSeconds: round2(responseTime),
			VectorResults:       genResult.VectorResultsCount,
			WebResults:          genResult.WebResultsCount,
			Timestamp:           time.Now().UTC().Format(time.RFC3339),
		}
		if genErr != nil {
			record.Error = genErr.Error()
		}
		results = append(results, record)
	}

	report := models.EvaluationReport{
		Results:   results,
		Summary:   summarize(results),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	e.mu.Lock()
	e.history = append(e.history, report)
	e.mu.Unlock()

	return &report, nil
}

// LatestSummary returns the summary of the most recent evaluation run,
// or nil if none has been run yet.
func (e *RAGEvaluator) LatestSummary() *models.EvaluationSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return nil
	}
	summary := e.history[len(e.history)-1].Summary
	return &summary
}

func summarize(results []models.EvaluationRecord) models.EvaluationSummary {
	summary := models.EvaluationSummary{TotalQuestions: len(results)}
	if len(results) == 0 {
		return summary
	}

	for _, r := range results {
		summary.AvgFaithfulness += r.Scores.Faithfulness
		summary.AvgAnswerRelevancy += r.Scores.AnswerRelevancy
		summary.AvgContextPrecision += r.Scores.ContextPrecision
		summary.AvgResponseTimeSeconds += r.ResponseTimeSeconds
	}
	n := float64(len(results))
	summary.AvgFaithfulness /= n
	summary.AvgAnswerRelevancy /= n
	summary.AvgContextPrecision /= n
	summary.AvgResponseTimeSeconds /= n
	return summary
}

// tokenSet lowercases, whitespace-splits, and deduplicates the text,
// dropping the given stop words. No punctuation stripping is done, so
// "blue." and "blue" are distinct tokens, which keeps the metric crude
// but cheap.
func tokenSet(text string, stopWords map[string]struct{}) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, stop := stopWords[word]; !stop {
			set[word] = struct{}{}
		}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for word := range a {
		if _, ok := b[word]; ok {
			count++
		}
	}
	return count
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// NewRAGEvaluator creates an evaluator over the given pipeline. topK
// controls how many chunks are pulled for context-precision scoring.
func NewRAGEvaluator(ragService RAGService, store VectorStore, topK int) *RAGEvaluator {
	return &RAGEvaluator{
		ragService: ragService,
		store:      store,
		topK:       topK,
	}
}
