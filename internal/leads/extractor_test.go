package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat/platform/internal/conversation"
	"github.com/orbitchat/platform/internal/llm"
)

// scriptedClient returns canned responses in order: the first call is the
// extraction, the second the scoring.
type scriptedClient struct {
	responses []llm.Response
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return llm.Response{}, c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return llm.Response{}, errors.New("scripted client exhausted")
}

func transcriptOfLength(n int) []conversation.TranscriptEntry {
	out := make([]conversation.TranscriptEntry, n)
	for i := range out {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		out[i] = conversation.TranscriptEntry{Role: role, Text: "message", Timestamp: time.Now()}
	}
	return out
}

func TestMaybeExtractSkipsShortTranscript(t *testing.T) {
	client := &scriptedClient{}
	repo := NewInMemoryRepository()
	ext := NewExtractor(client, repo, nil, 4, nil)

	lead := ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(3))

	assert.Nil(t, lead)
	assert.Zero(t, client.calls, "no gateway call below the transcript threshold")
	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Empty(t, all)
}

func TestMaybeExtractCreatesLead(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"Jordan Lee","email":"jordan@example.com","phone":"","company":"Acme","interests":["pricing"],"notes":"wants a demo"}`},
		{Text: `{"score":82,"rationale":"clear buying intent","recommendedActions":["schedule demo"]}`},
	}}
	repo := NewInMemoryRepository()
	ext := NewExtractor(client, repo, nil, 4, nil)

	captured := ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))
	require.NotNil(t, captured)

	all, err := repo.ListByTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	lead := all[0]
	assert.Equal(t, captured.ID, lead.ID)
	assert.Equal(t, "jordan@example.com", lead.Email)
	assert.Equal(t, "chatbot", lead.Source)
	assert.Equal(t, "bot-1", lead.ChatbotID)
	assert.Equal(t, 82, lead.Score)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, "sess-1", lead.Metadata.SessionID)
	assert.Equal(t, []string{"pricing"}, lead.Metadata.Interests)
	require.NotNil(t, lead.Metadata.Scoring)
	assert.Equal(t, 82, lead.Metadata.Scoring.Score)
	assert.Equal(t, "clear buying intent", lead.Metadata.Scoring.Rationale)
}

func TestMaybeExtractIdentityGate(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"","email":"","phone":"","company":"","interests":["pricing"],"notes":"curious"}`},
	}}
	repo := NewInMemoryRepository()
	ext := NewExtractor(client, repo, nil, 4, nil)

	lead := ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(6))

	assert.Nil(t, lead)
	assert.Equal(t, 1, client.calls, "scoring never runs without identity")
	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Empty(t, all)
}

func TestMaybeExtractDedupByEmail(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"Jordan","email":"a@x.com","phone":"","company":"","interests":[],"notes":""}`},
	}}
	repo := NewInMemoryRepository()
	repo.Seed(&Lead{ID: "lead-1", TenantID: "tenant-1", Email: "a@x.com", Status: StatusNew})
	ext := NewExtractor(client, repo, nil, 4, nil)

	ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Len(t, all, 1, "no duplicate lead for a known email")
}

func TestMaybeExtractDedupByPhone(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"Jordan","email":"","phone":"+1 555 0100","company":"","interests":[],"notes":""}`},
	}}
	repo := NewInMemoryRepository()
	repo.Seed(&Lead{ID: "lead-1", TenantID: "tenant-1", Phone: "+1 555 0100", Status: StatusNew})
	ext := NewExtractor(client, repo, nil, 4, nil)

	ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Len(t, all, 1)
}

func TestMaybeExtractDedupIgnoresEmailCase(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"Jordan","email":"A@X.com","phone":"","company":"","interests":[],"notes":""}`},
	}}
	repo := NewInMemoryRepository()
	// Entered via the dashboard, casing preserved.
	repo.Seed(&Lead{ID: "lead-1", TenantID: "tenant-1", Email: "A@x.COM", Status: StatusNew})
	ext := NewExtractor(client, repo, nil, 4, nil)

	lead := ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	assert.Nil(t, lead)
	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Len(t, all, 1, "email dedup is case-insensitive")
}

func TestMaybeExtractNeutralScoreOnScoringFailure(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{Text: `{"name":"Jordan","email":"jordan@example.com","phone":"","company":"","interests":[],"notes":""}`},
			{},
		},
		errs: []error{nil, errors.New("gateway timeout")},
	}
	repo := NewInMemoryRepository()
	ext := NewExtractor(client, repo, nil, 4, nil)

	ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	require.Len(t, all, 1)
	assert.Equal(t, 50, all[0].Score, "scoring failure falls back to the neutral score")
}

func TestMaybeExtractSwallowsExtractionFailure(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("gateway down")}, responses: []llm.Response{{}}}
	repo := NewInMemoryRepository()
	ext := NewExtractor(client, repo, nil, 4, nil)

	// Must not panic or propagate.
	ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	all, _ := repo.ListByTenant(context.Background(), "tenant-1")
	assert.Empty(t, all)
}

type captureAnnouncer struct {
	leads []*Lead
}

func (a *captureAnnouncer) LeadCaptured(ctx context.Context, lead *Lead) {
	a.leads = append(a.leads, lead)
}

func TestMaybeExtractAnnouncesCapture(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Text: `{"name":"Jordan","email":"jordan@example.com","phone":"","company":"","interests":[],"notes":""}`},
		{Text: `{"score":70,"rationale":"ok","recommendedActions":[]}`},
	}}
	repo := NewInMemoryRepository()
	ann := &captureAnnouncer{}
	ext := NewExtractor(client, repo, ann, 4, nil)

	ext.MaybeExtract(context.Background(), "tenant-1", "bot-1", "sess-1", transcriptOfLength(4))

	require.Len(t, ann.leads, 1)
	assert.Equal(t, "jordan@example.com", ann.leads[0].Email)
}
