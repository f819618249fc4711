package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat/platform/pkg/logging"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(_ context.Context, _ Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClient_PrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "hi"}}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackClient_FallbackOnPrimaryError(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "backup", resp.Text)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClient_BothFail(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{err: errors.New("quota")}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	_, err := c.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, "quota", err.Error())
}

func TestFallbackClient_NoFallbackConfigured(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	c := NewFallbackClient(primary, nil, logging.New("error"))

	_, err := c.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, "throttled", err.Error())
}
