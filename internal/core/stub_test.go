package core

import (
	"context"
	"sync"
)

// stubClient is a deterministic llm.Client.
type stubClient struct {
	mu      sync.Mutex
	resp    string
	err     error
	prompts []string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.resp, nil
}

func (s *stubClient) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}
