package linkchannel_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/features/command/linkchannel"
	"github.com/AntonStoeckl/library-rentals-go/store/memoryengine"
)

func Test_CommandHandler_Handle_LinksAndRelinks(t *testing.T) {
	// arrange
	s := memoryengine.New()
	handler := linkchannel.NewCommandHandler(s)
	userID := uuid.New()

	// act
	first, err := handler.Handle(context.Background(), linkchannel.BuildCommand(userID, " 1234 "))
	require.NoError(t, err)
	second, err := handler.Handle(context.Background(), linkchannel.BuildCommand(userID, "5678"))
	require.NoError(t, err)

	// assert
	assert.False(t, first.Idempotent)
	assert.False(t, second.Idempotent)

	channelID, ok, err := s.ChannelOf(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "5678", channelID)
}

func Test_CommandHandler_Handle_IsIdempotent_ForTheSameChannel(t *testing.T) {
	// arrange
	s := memoryengine.New()
	handler := linkchannel.NewCommandHandler(s)
	command := linkchannel.BuildCommand(uuid.New(), "1234")
	_, err := handler.Handle(context.Background(), command)
	require.NoError(t, err, "error in arranging test data")

	// act
	result, err := handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
}

func Test_CommandHandler_Handle_RejectsEmptyChannel(t *testing.T) {
	_, err := linkchannel.NewCommandHandler(memoryengine.New()).Handle(context.Background(), linkchannel.BuildCommand(uuid.New(), "  "))

	assert.ErrorIs(t, err, linkchannel.ErrEmptyChannelID)
}
