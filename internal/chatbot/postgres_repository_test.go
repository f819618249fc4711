package chatbot

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT").
		WithArgs("bot-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "name", "welcome_message", "theme", "active", "created_at",
		}).AddRow("bot-1", "tenant-1", "Support Bot", "Hi!", "light", true, now))

	repo := NewPostgresRepository(mock)
	bot, err := repo.GetByID(context.Background(), "bot-1")
	require.NoError(t, err)
	assert.Equal(t, "Support Bot", bot.Name)
	assert.True(t, bot.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "name", "welcome_message", "theme", "active", "created_at",
		}))

	repo := NewPostgresRepository(mock)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO chatbots").
		WithArgs(pgxmock.AnyArg(), "tenant-1", "Sales Bot", "Welcome!", "dark").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewPostgresRepository(mock)
	bot, err := repo.Create(context.Background(), &CreateRequest{
		TenantID:       "tenant-1",
		Name:           "Sales Bot",
		WelcomeMessage: "Welcome!",
		Theme:          "dark",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bot.ID)
	assert.True(t, bot.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
