package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextTruncatesGroundingText(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedContent(&WebsiteContent{
		ID:       "c-1",
		TenantID: "tenant-1",
		URL:      "https://example.com/a",
		Content:  strings.Repeat("a", 3000),
		Active:   true,
	})
	repo.SeedContent(&WebsiteContent{
		ID:       "c-2",
		TenantID: "tenant-1",
		URL:      "https://example.com/b",
		Content:  strings.Repeat("b", 2000),
		Active:   true,
	})

	asm := NewAssembler(repo, 2000, nil)
	pc, err := asm.BuildContext(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Len(t, pc.GroundingText, 2000)
}

func TestBuildContextOnlyActiveEntries(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedEntry(&KBEntry{ID: "e-1", TenantID: "tenant-1", Question: "What are your hours?", Answer: "9-5 weekdays", Active: true})
	repo.SeedEntry(&KBEntry{ID: "e-2", TenantID: "tenant-1", Question: "Old question", Answer: "Old answer", Active: false})
	repo.SeedEntry(&KBEntry{ID: "e-3", TenantID: "tenant-2", Question: "Other tenant", Answer: "Hidden", Active: true})

	asm := NewAssembler(repo, 2000, nil)
	pc, err := asm.BuildContext(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, pc.KnowledgeBase, 1)
	assert.Equal(t, "What are your hours?", pc.KnowledgeBase[0].Question)
}

func TestBuildContextIsReadOnly(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedEntry(&KBEntry{ID: "e-1", TenantID: "tenant-1", Question: "Q", Answer: "A", Active: true})

	asm := NewAssembler(repo, 2000, nil)
	pc, err := asm.BuildContext(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e-1"}, pc.EntryIDs)

	entries, err := repo.ListEntries(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].UsageCount, "assembly must not persist changes")
}

func TestRecordUsageBumpsCounters(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedEntry(&KBEntry{ID: "e-1", TenantID: "tenant-1", Question: "Q", Answer: "A", Active: true})

	asm := NewAssembler(repo, 2000, nil)
	asm.RecordUsage(context.Background(), "tenant-1", []string{"e-1"})
	asm.RecordUsage(context.Background(), "tenant-1", []string{"e-1"})
	asm.RecordUsage(context.Background(), "tenant-1", nil)

	entries, err := repo.ListEntries(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].UsageCount)
}

func TestBuildContextEmptyTenant(t *testing.T) {
	asm := NewAssembler(NewInMemoryRepository(), 2000, nil)
	pc, err := asm.BuildContext(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, pc.KnowledgeBase)
	assert.Empty(t, pc.GroundingText)
}
