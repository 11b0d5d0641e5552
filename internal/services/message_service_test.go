package services_test

import (
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMessageService() (*services.MessageService, *MockMessageRepository, *MockUserRepository, *MockItemRepository) {
	messageRepo := new(MockMessageRepository)
	userRepo := new(MockUserRepository)
	itemRepo := new(MockItemRepository)
	// nil RabbitMQ client: the relay is skipped, persistence still works
	return services.NewMessageService(messageRepo, userRepo, itemRepo, nil), messageRepo, userRepo, itemRepo
}

func TestChatRoutingKey(t *testing.T) {
	assert.Equal(t, "chat.item-1.user-2", services.ChatRoutingKey("item-1", "user-2"))
}

func TestMessageService_SendMessage(t *testing.T) {
	service, messageRepo, userRepo, itemRepo := newMessageService()

	userRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2"}, nil).Once()
	itemRepo.On("GetByID", "item-1").Return(&models.Item{ID: "item-1"}, nil).Once()
	messageRepo.On("Create", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "msg-1"
	}).Return(nil).Once()

	message, err := service.SendMessage("user-1", "user-2", "item-1", "Is this still available?")
	assert.NoError(t, err)
	assert.Equal(t, "msg-1", message.ID)
	assert.Equal(t, "user-1", message.SenderID)
	assert.Equal(t, "user-2", message.ReceiverID)
	assert.False(t, message.Timestamp.IsZero())

	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

func TestMessageService_SendMessage_UnknownReceiver(t *testing.T) {
	service, messageRepo, userRepo, _ := newMessageService()

	userRepo.On("GetByID", "ghost").Return(nil, repositories.ErrNotFound).Once()

	_, err := service.SendMessage("user-1", "ghost", "item-1", "hello")
	assert.ErrorIs(t, err, services.ErrNotFound)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestMessageService_GetConversation_SymmetricForBothParticipants(t *testing.T) {
	service, messageRepo, userRepo, itemRepo := newMessageService()

	base := time.Now()
	conversation := []models.Message{
		{ID: "m1", SenderID: "user-1", ReceiverID: "user-2", ItemID: "item-1", Timestamp: base},
		{ID: "m2", SenderID: "user-2", ReceiverID: "user-1", ItemID: "item-1", Timestamp: base.Add(time.Minute)},
	}

	userRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2"}, nil).Once()
	userRepo.On("GetByID", "user-1").Return(&models.User{ID: "user-1"}, nil).Once()
	itemRepo.On("GetByID", "item-1").Return(&models.Item{ID: "item-1"}, nil).Twice()
	// The repository query covers both directions, so either participant's
	// view hits it with their own ID first and gets the same rows.
	messageRepo.On("GetConversation", "user-1", "user-2", "item-1").Return(conversation, nil).Once()
	messageRepo.On("GetConversation", "user-2", "user-1", "item-1").Return(conversation, nil).Once()

	asSender, err := service.GetConversation("user-1", "user-2", "item-1")
	assert.NoError(t, err)
	asReceiver, err := service.GetConversation("user-2", "user-1", "item-1")
	assert.NoError(t, err)

	assert.Equal(t, asSender, asReceiver)
	assert.True(t, asSender[0].Timestamp.Before(asSender[1].Timestamp))
	messageRepo.AssertExpectations(t)
}

func TestMessageService_GetUserMessages(t *testing.T) {
	service, messageRepo, _, _ := newMessageService()

	inbox := []models.Message{{ID: "m2"}, {ID: "m1"}}
	messageRepo.On("GetByUser", "user-1").Return(inbox, nil).Once()

	messages, err := service.GetUserMessages("user-1")
	assert.NoError(t, err)
	assert.Equal(t, inbox, messages)
	messageRepo.AssertExpectations(t)
}
