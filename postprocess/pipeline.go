// Package postprocess cleans up raw transcription output before it is
// typed: whitespace normalization and user dictionary corrections.
package postprocess

import (
	"context"
	"fmt"
	"strings"
)

// Processor transforms a piece of transcribed text.
type Processor func(ctx context.Context, text string) (string, error)

// Pipeline runs processors in sequence, feeding each one's output into
// the next.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a pipeline from the given processors.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process runs the text through every processor. On error the text
// processed so far is returned alongside the error.
func (p *Pipeline) Process(ctx context.Context, text string) (string, error) {
	result := text
	var err error

	for i, proc := range p.processors {
		result, err = proc(ctx, result)
		if err != nil {
			return result, fmt.Errorf("processor %d: %w", i, err)
		}
	}
	return result, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(proc Processor) {
	p.processors = append(p.processors, proc)
}

// TrimProcessor strips leading and trailing whitespace. Whisper output
// usually arrives with a leading space.
func TrimProcessor() Processor {
	return func(_ context.Context, text string) (string, error) {
		return strings.TrimSpace(text), nil
	}
}
