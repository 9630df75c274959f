// ABOUTME: Scripted generator for tests of callers
// ABOUTME: Records prompts and returns canned text or errors
package assistant

import (
	"context"
	"sync"
)

type Mock struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
	Audio   [][]byte
}

func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", serviceError("mock", "generate", m.Err)
	}
	return m.Reply, nil
}

func (m *Mock) GenerateFromAudio(_ context.Context, prompt string, audio []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.Audio = append(m.Audio, audio)
	if m.Err != nil {
		return "", serviceError("mock", "generate from audio", m.Err)
	}
	return m.Reply, nil
}
