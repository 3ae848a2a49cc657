package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/finease/finease-backend/provider"
)

// answerPromptTemplate grounds the model in the retrieved context and pins
// the output language. Placeholders: context, question, language.
const answerPromptTemplate = `SYSTEM: You are a helpful financial analyst assistant. Answer the user's question based ONLY on the context provided.
Your answer should be in simple, easy-to-understand language.
If the context does not contain the answer, state that you cannot find the information in the provided text.

**IMPORTANT**: You MUST answer in the following language: %[1]s

CONTEXT:
%[2]s

QUESTION:
%[3]s

ANSWER (in %[1]s):`

// AnswerChain answers questions about exactly one document. Each call is
// stateless apart from the immutable index it closes over; the two chains
// of a session never share retrieval context.
type AnswerChain struct {
	retriever *Retriever
	provider  provider.Provider
}

func NewAnswerChain(index *Index, p provider.Provider, topK int) *AnswerChain {
	return &AnswerChain{
		retriever: NewRetriever(index, p, topK),
		provider:  p,
	}
}

// Answer retrieves context for the question, fills the prompt template and
// returns the model's raw text output.
func (c *AnswerChain) Answer(ctx context.Context, question, language string) (string, error) {
	contexts, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(answerPromptTemplate, language, strings.Join(contexts, "\n\n"), question)
	answer, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

// Index exposes the chain's underlying document index for search endpoints.
func (c *AnswerChain) Index() *Index { return c.retriever.index }

// Retrieve returns the chain's retrieval context for a question.
func (c *AnswerChain) Retrieve(ctx context.Context, question string) ([]string, error) {
	return c.retriever.Retrieve(ctx, question)
}
