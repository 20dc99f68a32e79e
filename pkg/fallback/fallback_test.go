package fallback

import (
	"context"
	"testing"

	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/stretchr/testify/assert"
)

type stubStrategy struct {
	layer  Layer
	answer map[string]string
	calls  int
}

func (s *stubStrategy) Layer() Layer { return s.layer }

func (s *stubStrategy) Lookup(_ context.Context, key string) (string, bool) {
	s.calls++
	v, ok := s.answer[key]
	return v, ok
}

type echoTerminal struct{}

func (echoTerminal) Layer() Layer { return LayerSimulated }

func (echoTerminal) Synthesize(key string) string { return "synthetic:" + key }

func TestChain_Acquire(t *testing.T) {
	shortcut := &stubStrategy{layer: LayerShortcut, answer: map[string]string{"111": "canonical"}}
	live := &stubStrategy{layer: LayerLive, answer: map[string]string{"222": "live"}}

	chain := NewChain[string](log.NewDiscardLogger(), echoTerminal{},
		[]Strategy[string]{shortcut, live},
		WithValidator[string](func(k string) bool { return k != "" }),
	)

	tests := []struct {
		name      string
		key       string
		wantOK    bool
		wantData  string
		wantLayer Layer
	}{
		{"shortcut", " 111 ", true, "canonical", LayerShortcut},
		{"live", "2 2 2", true, "live", LayerLive},
		{"terminal", "333", true, "synthetic:333", LayerSimulated},
		{"invalid key", "   ", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := chain.Acquire(context.Background(), tt.key)
			assert.Equal(t, tt.wantOK, res.Success)
			assert.Equal(t, tt.wantData, res.Data)
			assert.Equal(t, tt.wantLayer, res.SourceLayer)
		})
	}
}

func TestChain_ShortcutSkipsLaterLayers(t *testing.T) {
	shortcut := &stubStrategy{layer: LayerShortcut, answer: map[string]string{"111": "canonical"}}
	live := &stubStrategy{layer: LayerLive}

	chain := NewChain[string](log.NewDiscardLogger(), echoTerminal{}, []Strategy[string]{shortcut, live})
	res := chain.Acquire(context.Background(), "111")

	assert.Equal(t, LayerShortcut, res.SourceLayer)
	assert.Equal(t, 0, live.calls)
}

func TestChain_CancelledContextStillSucceeds(t *testing.T) {
	live := &stubStrategy{layer: LayerLive, answer: map[string]string{"222": "live"}}
	chain := NewChain[string](log.NewDiscardLogger(), echoTerminal{}, []Strategy[string]{live})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := chain.Acquire(ctx, "222")
	assert.True(t, res.Success)
	assert.Equal(t, LayerSimulated, res.SourceLayer)
}
