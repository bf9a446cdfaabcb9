package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahkazmii/ragserver/models"
)

func newTestEvaluator(store *fakeVectorStore, gen *fakeGenerator) *RAGEvaluator {
	svc := NewRAGService(store, &fakeWebSearcher{}, gen, 512, 150, 3)
	return NewRAGEvaluator(svc, store, 3)
}

func TestEvaluateFaithfulness(t *testing.T) {
	e := newTestEvaluator(&fakeVectorStore{}, &fakeGenerator{})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Zero(t, e.EvaluateFaithfulness("", "some context"))
		assert.Zero(t, e.EvaluateFaithfulness("some answer", ""))
	})

	t.Run("answer of only stop words", func(t *testing.T) {
		assert.Zero(t, e.EvaluateFaithfulness("the and of", "anything here"))
	})

	t.Run("fully grounded answer", func(t *testing.T) {
		score := e.EvaluateFaithfulness("sky is blue", "the sky is blue today")
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("partially grounded answer", func(t *testing.T) {
		// Only "sky" out of {sky, looks, red} appears in the context.
		score := e.EvaluateFaithfulness("sky looks red", "the sky is blue")
		assert.InDelta(t, 1.0/3.0, score, 1e-9)
	})
}

func TestEvaluateRelevancy(t *testing.T) {
	e := newTestEvaluator(&fakeVectorStore{}, &fakeGenerator{})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Zero(t, e.EvaluateRelevancy("", "an answer"))
		assert.Zero(t, e.EvaluateRelevancy("a question", ""))
	})

	t.Run("question of only stop words is neutral", func(t *testing.T) {
		assert.InDelta(t, 0.5, e.EvaluateRelevancy("what how when", "whatever answer"), 1e-9)
	})

	t.Run("short answer gets no length bonus", func(t *testing.T) {
		// Question tokens {color, is, sky}; answer shares {is, sky}.
		score := e.EvaluateRelevancy("what color is sky", "sky is blue")
		assert.InDelta(t, 2.0/3.0, score, 1e-9)
	})

	t.Run("reasonable answer length earns a bonus", func(t *testing.T) {
		answer := "sky is blue because sunlight scatters when entering atmosphere"
		require.GreaterOrEqual(t, len(answer), 50)
		require.LessOrEqual(t, len(answer), 500)

		score := e.EvaluateRelevancy("what color is sky", answer)
		assert.InDelta(t, 2.0/3.0+0.1, score, 1e-9)
	})

	t.Run("bonus is capped at one", func(t *testing.T) {
		answer := "sky blue " + strings.Repeat("x ", 25)
		require.GreaterOrEqual(t, len(answer), 50)

		score := e.EvaluateRelevancy("sky blue", answer)
		assert.InDelta(t, 1.0, score, 1e-9)
	})
}

func TestEvaluateContextPrecision(t *testing.T) {
	e := newTestEvaluator(&fakeVectorStore{}, &fakeGenerator{})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Zero(t, e.EvaluateContextPrecision("", []string{"chunk"}))
		assert.Zero(t, e.EvaluateContextPrecision("a question", nil))
	})

	t.Run("counts chunks with at least two shared tokens", func(t *testing.T) {
		chunks := []string{
			"the sky is blue",  // shares {sky, is}: relevant
			"grass is green",   // shares {is}: not relevant
			"sky color is odd", // shares {sky, color, is}: relevant
		}
		score := e.EvaluateContextPrecision("what color is the sky", chunks)
		assert.InDelta(t, 2.0/3.0, score, 1e-9)
	})
}

func TestRunEvaluation(t *testing.T) {
	store := &fakeVectorStore{
		searchResults: []models.SearchResult{
			{Document: "The sky is blue.", Metadata: models.ChunkMetadata{SourceName: "weather.txt"}, SimilarityScore: 0.9},
		},
	}
	gen := &fakeGenerator{answer: "The sky is blue."}
	e := newTestEvaluator(store, gen)

	report, err := e.RunEvaluation(context.Background(), []string{"What color is the sky?"}, false)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	record := report.Results[0]
	assert.Equal(t, "What color is the sky?", record.Question)
	assert.Equal(t, "The sky is blue.", record.Answer)
	assert.InDelta(t, 1.0, record.Scores.Faithfulness, 1e-9)
	assert.GreaterOrEqual(t, record.ResponseTimeSeconds, 0.0)
	assert.Equal(t, 1, record.VectorResults)
	assert.Zero(t, record.WebResults)
	assert.Empty(t, record.Error)
	assert.NotEmpty(t, record.Timestamp)

	assert.Equal(t, 1, report.Summary.TotalQuestions)
	assert.InDelta(t, 1.0, report.Summary.AvgFaithfulness, 1e-9)

	latest := e.LatestSummary()
	require.NotNil(t, latest)
	assert.Equal(t, report.Summary, *latest)
}

func TestRunEvaluationRecordsPipelineFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("model overloaded")}
	e := newTestEvaluator(&fakeVectorStore{}, gen)

	report, err := e.RunEvaluation(context.Background(), []string{"q1", "q2"}, false)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	for _, record := range report.Results {
		assert.Equal(t, fallbackResponse, record.Answer)
		assert.Contains(t, record.Error, "model overloaded")
	}
	assert.Equal(t, 2, report.Summary.TotalQuestions)
}

func TestRunEvaluationRejectsEmptyQuestionList(t *testing.T) {
	e := newTestEvaluator(&fakeVectorStore{}, &fakeGenerator{})

	_, err := e.RunEvaluation(context.Background(), nil, false)
	require.Error(t, err)
}

func TestLatestSummaryBeforeAnyRun(t *testing.T) {
	e := newTestEvaluator(&fakeVectorStore{}, &fakeGenerator{})
	assert.Nil(t, e.LatestSummary())
}
