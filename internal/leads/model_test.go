package leads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusNew, StatusContacted, true},
		{StatusNew, StatusQualified, true},
		{StatusContacted, StatusConverted, true},
		{StatusQualified, StatusLost, true},
		{StatusConverted, StatusNew, false},
		{StatusLost, StatusContacted, false},
		{StatusNew, StatusConverted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRepositoryRejectsTerminalTransition(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Seed(&Lead{ID: "lead-1", TenantID: "tenant-1", Email: "a@x.com", Status: StatusConverted})

	_, err := repo.UpdateStatus(context.Background(), "tenant-1", "lead-1", StatusContacted)
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, StatusConverted, transition.From)
}

func TestCreateRequestValidate(t *testing.T) {
	req := &CreateRequest{TenantID: "tenant-1"}
	assert.ErrorIs(t, req.Validate(), ErrNoIdentity)

	req = &CreateRequest{TenantID: "tenant-1", Email: "a@x.com", Score: 180}
	require.NoError(t, req.Validate())
	assert.Equal(t, 100, req.Score, "score clamps to 100")
}
