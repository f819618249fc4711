package knowledge

import (
	"context"
	"strings"

	"github.com/orbitchat/platform/pkg/logging"
)

// QA is a question/answer pair handed to the response generator.
type QA struct {
	Question string
	Answer   string
}

// PromptContext is the bounded context assembled for one chat turn.
// EntryIDs names the KB entries included, for a later RecordUsage call.
type PromptContext struct {
	KnowledgeBase []QA
	GroundingText string
	EntryIDs      []string
}

// Assembler gathers a tenant's knowledge base and scraped-content excerpts
// into a bounded prompt context.
type Assembler struct {
	repo     Repository
	maxChars int
	logger   *logging.Logger
}

// NewAssembler builds an assembler. maxChars bounds the grounding text; a
// non-positive value falls back to 2000.
func NewAssembler(repo Repository, maxChars int, logger *logging.Logger) *Assembler {
	if repo == nil {
		panic("knowledge: repository required")
	}
	if maxChars <= 0 {
		maxChars = 2000
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Assembler{repo: repo, maxChars: maxChars, logger: logger}
}

// BuildContext fetches the tenant's active KB entries and concatenates its
// scraped content, hard-truncated at the character budget. It is a pure
// read: callers that serve the context record usage via RecordUsage.
func (a *Assembler) BuildContext(ctx context.Context, tenantID string) (*PromptContext, error) {
	entries, err := a.repo.ListActiveEntries(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	qa := make([]QA, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		qa = append(qa, QA{Question: e.Question, Answer: e.Answer})
		ids = append(ids, e.ID)
	}

	contents, err := a.repo.ListContent(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, c := range contents {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(c.Content)
		if sb.Len() >= a.maxChars {
			break
		}
	}
	grounding := sb.String()
	if len(grounding) > a.maxChars {
		grounding = grounding[:a.maxChars]
	}

	return &PromptContext{KnowledgeBase: qa, GroundingText: grounding, EntryIDs: ids}, nil
}

// RecordUsage bumps the usage counters of the entries served in a prompt
// context. Best-effort; failures are logged and never surfaced.
func (a *Assembler) RecordUsage(ctx context.Context, tenantID string, entryIDs []string) {
	if len(entryIDs) == 0 {
		return
	}
	if err := a.repo.IncrementUsage(ctx, tenantID, entryIDs); err != nil {
		a.logger.Warn("failed to bump kb usage counters", "error", err, "tenant_id", tenantID)
	}
}
