package llm

import "context"

type modelDefaulter struct {
	inner Client
	model string
}

// WithDefaultModel fills in the model id on requests that leave it empty.
// Pipeline components stay model-agnostic; the binary decides the model.
func WithDefaultModel(c Client, model string) Client {
	if model == "" {
		return c
	}
	return &modelDefaulter{inner: c, model: model}
}

func (m *modelDefaulter) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = m.model
	}
	return m.inner.Complete(ctx, req)
}
