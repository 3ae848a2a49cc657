package server

import (
	"context"
	"strings"
)

// DefaultResponder is the built-in FAQ reply logic used when no external
// responder is wired in.
func DefaultResponder(_ context.Context, message string) (string, error) {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "hello"), strings.Contains(m, "hi"):
		return "Hello! I'm the FinEase assistant. Ask me about fixed deposits, loans, or use the document comparison to analyse two product pages.", nil
	case strings.Contains(m, "fixed deposit"), strings.Contains(m, "fd"):
		return "A fixed deposit locks your money for a chosen term at a guaranteed interest rate. To compare two FD products, submit both product pages via the comparison feature.", nil
	case strings.Contains(m, "interest"):
		return "Interest rates vary by product and term. Paste two product page URLs into the comparison tool and ask which one offers the better rate.", nil
	case strings.Contains(m, "thank"):
		return "You're welcome! Happy to help with anything else.", nil
	default:
		return "I can help with questions about financial products. For a detailed comparison, submit two product page URLs and ask your question there.", nil
	}
}
