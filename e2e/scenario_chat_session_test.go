package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chat-shell/domain"
	"chat-shell/domain/chat"
	"chat-shell/search"
)

type testChatSessionSuite struct {
	BaseSessionSuite
}

func TestChatSessionSuite(t *testing.T) {
	suite.Run(t, &testChatSessionSuite{})
}

func (s *testChatSessionSuite) TestFullChatSessionFlow() {
	ctx := context.Background()
	var generalID uuid.UUID
	var doomedID uuid.UUID

	// --- STEP 0: ACCOUNT AND SESSION ---
	s.Run("Step 0: Register, login and open the session", func() {
		identity, token, err := s.Auth.Register("alice42", "Sup3r$ecretPass!")
		s.Require().NoError(err)
		s.Require().NotEmpty(token)

		loggedIn, loginToken, err := s.Auth.Login("alice42", "Sup3r$ecretPass!")
		s.Require().NoError(err)
		s.Require().Equal(identity.ID, loggedIn.ID)

		s.Session.Begin(loggedIn, string(loginToken))
		s.Require().NotNil(s.Session.Current())
	})

	// --- STEP 1: ROOM PROVISIONING ---
	s.Run("Step 1: Create rooms and reload the directory from the store", func() {
		general, err := s.Chat.CreateRoom(chat.CreateRoomCommand{
			Name: "General Chat",
			Kind: "group",
			Tags: []string{"general", "public"},
		})
		s.Require().NoError(err)
		generalID = general.ID

		_, err = s.Chat.CreateRoom(chat.CreateRoomCommand{
			Name: "Anonymous Room #1042",
			Kind: "anonymous",
		})
		s.Require().NoError(err)

		// A fresh fetch must observe both persisted rooms.
		s.Require().NoError(s.Chat.LoadRooms(ctx))
		s.Require().Len(s.Chat.Rooms(), 2)
	})

	// --- STEP 2: SELECTION ---
	s.Run("Step 2: Open the room and wait for its timeline", func() {
		s.Chat.SelectRoom(ctx, generalID)
		s.Require().Eventually(func() bool {
			return !s.Chat.IsLoading()
		}, 5*time.Second, 10*time.Millisecond)

		active := s.Chat.ActiveRoom()
		s.Require().NotNil(active)
		s.Require().Equal("General Chat", active.Name)
		s.Require().Empty(s.Chat.Messages())
	})

	// --- STEP 3: SENDING, MODERATION INCLUDED ---
	s.Run("Step 3: Send messages and observe moderation", func() {
		sent, err := s.Chat.SendMessage(chat.SendCommand{
			Room:    generalID,
			Content: "hello everyone",
		})
		s.Require().NoError(err)
		s.Require().True(sent.Encrypted)

		censored, err := s.Chat.SendMessage(chat.SendCommand{
			Room:    generalID,
			Content: "a wild badger appears",
		})
		s.Require().NoError(err)
		s.Require().Equal("a wild ****** appears", censored.Content)

		s.Require().Len(s.Chat.Messages(), 2)
	})

	// --- STEP 4: SELF-DESTRUCTION AT THE EXACT DEADLINE ---
	s.Run("Step 4: Self-destructing message burns on schedule", func() {
		doomed, err := s.Chat.SendMessage(chat.SendCommand{
			Room:         generalID,
			Content:      "reply before this vanishes",
			SelfDestruct: true,
		})
		s.Require().NoError(err)
		doomedID = doomed.ID
		s.Require().Equal(domain.DefaultSelfDestructAfter, doomed.SelfDestructAfter)

		s.Scheduler.Advance(domain.DefaultSelfDestructAfter - time.Second)
		messages := s.Chat.Messages()
		s.Require().Equal("reply before this vanishes", messages[len(messages)-1].Content)

		s.Scheduler.Advance(time.Second)
		messages = s.Chat.Messages()
		last := messages[len(messages)-1]
		s.Require().Equal(doomedID, last.ID)
		s.Require().Equal(domain.Tombstone, last.Content)
		s.Require().True(last.Deleted)
	})

	// --- STEP 5: THE TOMBSTONE SURVIVES A RELOAD ---
	s.Run("Step 5: Reload the room from the store", func() {
		s.Chat.SelectRoom(ctx, generalID)
		s.Require().Eventually(func() bool {
			return !s.Chat.IsLoading()
		}, 5*time.Second, 10*time.Millisecond)

		messages := s.Chat.Messages()
		s.Require().Len(messages, 3)
		last := messages[len(messages)-1]
		s.Require().Equal(doomedID, last.ID)
		s.Require().Equal(domain.Tombstone, last.Content)
	})

	// --- STEP 6: SEARCH NEVER RESURRECTS A BURNED BODY ---
	s.Run("Step 6: Destroyed content stops matching searches", func() {
		hits, err := s.index.Search(ctx, search.ParseQuery("/find hello"))
		s.Require().NoError(err)
		s.Require().Len(hits, 1)

		hits, err = s.index.Search(ctx, search.ParseQuery("/find vanishes"))
		s.Require().NoError(err)
		s.Require().Empty(hits)
	})

	// --- STEP 7: SIGN-OUT RESET ---
	s.Run("Step 7: Signing out clears the session core", func() {
		s.Session.End()
		s.Require().Nil(s.Session.Current())
		s.Require().Empty(s.Chat.Rooms())
		s.Require().Nil(s.Chat.ActiveRoom())
		s.Require().Empty(s.Chat.Messages())
	})
}
