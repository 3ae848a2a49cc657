package server

import (
	"context"
	"strings"
	"testing"
)

func TestDefaultResponder(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Hello there", "Hello!"},
		{"what is a fixed deposit?", "fixed deposit"},
		{"which interest rate is better", "Interest rates"},
		{"thanks a lot", "You're welcome"},
		{"something unrelated", "I can help"},
	}
	for _, c := range cases {
		got, err := DefaultResponder(context.Background(), c.message)
		if err != nil {
			t.Fatalf("%q: %v", c.message, err)
		}
		if !strings.Contains(got, c.want) {
			t.Errorf("%q: reply %q does not contain %q", c.message, got, c.want)
		}
	}
}
