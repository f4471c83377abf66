package orch

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Envelope
	err    error
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	env, err := core.Decode(fr)
	if err != nil {
		return err
	}
	f.frames = append(f.frames, env)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// take returns and clears everything received so far.
func (f *fakeConn) take() []core.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.frames
	f.frames = nil
	return out
}

func types(envs []core.Envelope) []core.EventType {
	out := make([]core.EventType, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Type)
	}
	return out
}

func decodeAs[T any](t *testing.T, env core.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func texts(t *testing.T, envs []core.Envelope) []string {
	t.Helper()
	out := []string{}
	for _, e := range envs {
		if e.Type == core.EventMessage {
			out = append(out, decodeAs[domain.Message](t, e).Text)
		}
	}
	return out
}

func lastOf(t *testing.T, envs []core.Envelope, typ core.EventType) core.Envelope {
	t.Helper()
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == typ {
			return envs[i]
		}
	}
	t.Fatalf("no %s frame in %v", typ, types(envs))
	return core.Envelope{}
}

var fixedNow = time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)

func newTestOrchestrator() *Orchestrator {
	return &Orchestrator{
		Presence: app.NewPresence(),
		Conns:    app.NewConnections(),
		Policy:   app.SimplePolicy{},
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	}
}

func connect(o *Orchestrator, id domain.ConnID) *fakeConn {
	c := &fakeConn{}
	o.OnConnect(id, c)
	return c
}

func TestOnConnectSendsWelcomeOnlyToNewConnection(t *testing.T) {
	o := newTestOrchestrator()
	a := connect(o, "aaaaaaaa-1")
	a.take()

	b := connect(o, "bbbbbbbb-2")

	assert.Empty(t, a.take())
	got := b.take()
	require.Len(t, got, 1)
	msg := decodeAs[domain.Message](t, got[0])
	assert.Equal(t, domain.Message{Name: domain.SystemName, Text: "Welcome! Your user id is bbbbb", Time: "13:04:05"}, msg)
	assert.Zero(t, o.Presence.Len())
}

func TestEnterRoomFirstMember(t *testing.T) {
	o := newTestOrchestrator()
	a := connect(o, "A")
	a.take()

	o.EnterRoom("A", "Alice", "lobby")

	got := a.take()
	assert.Equal(t, []core.EventType{core.EventMessage, core.EventUserList, core.EventRoomList}, types(got))
	assert.Equal(t, []string{"You have entered the room lobby"}, texts(t, got))

	users := decodeAs[core.UserListPayload](t, got[1])
	assert.Equal(t, []domain.Session{{ID: "A", Name: "Alice", Room: "lobby"}}, users.Users)

	rooms := decodeAs[core.RoomListPayload](t, got[2])
	assert.Equal(t, []domain.RoomName{"lobby"}, rooms.Rooms)
}

func TestChatScenario(t *testing.T) {
	o := newTestOrchestrator()
	a, b, c := connect(o, "A"), connect(o, "B"), connect(o, "C")
	o.EnterRoom("A", "Alice", "lobby")
	o.EnterRoom("C", "Carol", "other")
	a.take()
	b.take()
	c.take()

	// Bob joins the lobby.
	o.EnterRoom("B", "Bob", "lobby")

	gotA := a.take()
	assert.Equal(t, []string{"Bob entered the room"}, texts(t, gotA))
	assert.Len(t, decodeAs[core.UserListPayload](t, lastOf(t, gotA, core.EventUserList)).Users, 2)

	gotB := b.take()
	assert.Equal(t, []string{"You have entered the room lobby"}, texts(t, gotB))
	assert.Len(t, decodeAs[core.UserListPayload](t, lastOf(t, gotB, core.EventUserList)).Users, 2)

	gotC := c.take()
	assert.Equal(t, []core.EventType{core.EventRoomList}, types(gotC))

	// Alice says hi.
	o.Message("A", "Alice", "hi")

	want := domain.Message{Name: "Alice", Text: "hi", Time: "13:04:05"}
	for _, conn := range []*fakeConn{a, b} {
		got := conn.take()
		require.Len(t, got, 1)
		assert.Equal(t, want, decodeAs[domain.Message](t, got[0]))
	}
	assert.Empty(t, c.take())

	// Bob leaves.
	o.OnDisconnect("B")

	gotA = a.take()
	assert.Equal(t, []core.EventType{core.EventMessage, core.EventUserList, core.EventRoomList}, types(gotA))
	assert.Equal(t, []string{"Bob left the room"}, texts(t, gotA))
	assert.Equal(t, []domain.Session{{ID: "A", Name: "Alice", Room: "lobby"}},
		decodeAs[core.UserListPayload](t, gotA[1]).Users)
	assert.Contains(t, decodeAs[core.RoomListPayload](t, gotA[2]).Rooms, domain.RoomName("lobby"))
	assert.Empty(t, b.take())

	// Alice leaves; nobody is left in the lobby.
	o.OnDisconnect("A")

	assert.NotContains(t, o.Presence.ActiveRooms(), domain.RoomName("lobby"))
	rooms := decodeAs[core.RoomListPayload](t, lastOf(t, c.take(), core.EventRoomList))
	assert.Equal(t, []domain.RoomName{"other"}, rooms.Rooms)
}

func TestEnterRoomSwitchesRooms(t *testing.T) {
	o := newTestOrchestrator()
	a, b := connect(o, "A"), connect(o, "B")
	o.EnterRoom("A", "Alice", "lobby")
	o.EnterRoom("B", "Bob", "lobby")
	a.take()
	b.take()

	o.EnterRoom("A", "Alice", "games")

	gotB := b.take()
	assert.Equal(t, []core.EventType{core.EventMessage, core.EventUserList, core.EventRoomList}, types(gotB))
	assert.Equal(t, []string{"Alice left the room"}, texts(t, gotB))
	assert.Equal(t, []domain.Session{{ID: "B", Name: "Bob", Room: "lobby"}},
		decodeAs[core.UserListPayload](t, gotB[1]).Users)

	gotA := a.take()
	assert.Equal(t, []core.EventType{core.EventMessage, core.EventUserList, core.EventRoomList}, types(gotA))
	assert.Equal(t, []string{"You have entered the room games"}, texts(t, gotA))
	assert.Equal(t, []domain.Session{{ID: "A", Name: "Alice", Room: "games"}},
		decodeAs[core.UserListPayload](t, gotA[1]).Users)
	assert.ElementsMatch(t, []domain.RoomName{"lobby", "games"}, decodeAs[core.RoomListPayload](t, gotA[2]).Rooms)

	// Messages now stay in the new room.
	o.Message("A", "Alice", "anyone?")
	assert.Len(t, a.take(), 1)
	assert.Empty(t, b.take())
}

func TestEnterRoomLastMemberEmptiesRoom(t *testing.T) {
	o := newTestOrchestrator()
	a := connect(o, "A")
	o.EnterRoom("A", "Alice", "lobby")
	a.take()

	o.EnterRoom("A", "Alice", "games")

	assert.Empty(t, o.Presence.ListByRoom("lobby"))
	assert.Equal(t, []domain.RoomName{"games"}, o.Presence.ActiveRooms())
	rooms := decodeAs[core.RoomListPayload](t, lastOf(t, a.take(), core.EventRoomList))
	assert.Equal(t, []domain.RoomName{"games"}, rooms.Rooms)
}

func TestReenterSameRoomKeepsOneEntry(t *testing.T) {
	o := newTestOrchestrator()
	a, b := connect(o, "A"), connect(o, "B")
	o.EnterRoom("A", "Alice", "lobby")
	o.EnterRoom("B", "Bob", "lobby")
	a.take()
	b.take()

	o.EnterRoom("A", "Alice", "lobby")

	assert.Len(t, o.Presence.ListByRoom("lobby"), 2)
	assert.Equal(t, []string{"Alice left the room", "Alice entered the room"}, texts(t, b.take()))
	users := decodeAs[core.UserListPayload](t, lastOf(t, a.take(), core.EventUserList)).Users
	assert.Len(t, users, 2)
}

func TestMessageWithoutRoomIsDropped(t *testing.T) {
	o := newTestOrchestrator()
	a, b := connect(o, "A"), connect(o, "B")
	o.EnterRoom("B", "Bob", "lobby")
	a.take()
	b.take()

	o.Message("A", "Alice", "hello?")
	o.Activity("A", "Alice")

	assert.Empty(t, a.take())
	assert.Empty(t, b.take())
}

func TestMessageUsesSuppliedName(t *testing.T) {
	o := newTestOrchestrator()
	a := connect(o, "A")
	o.EnterRoom("A", "Alice", "lobby")
	a.take()

	o.Message("A", "Admin", "")

	got := a.take()
	require.Len(t, got, 1)
	assert.Equal(t, domain.Message{Name: "Admin", Text: "", Time: "13:04:05"}, decodeAs[domain.Message](t, got[0]))
}

func TestActivityExcludesSender(t *testing.T) {
	o := newTestOrchestrator()
	a, b, c := connect(o, "A"), connect(o, "B"), connect(o, "C")
	o.EnterRoom("A", "Alice", "lobby")
	o.EnterRoom("B", "Bob", "lobby")
	o.EnterRoom("C", "Carol", "other")
	a.take()
	b.take()
	c.take()

	o.Activity("A", "Alice")

	assert.Empty(t, a.take())
	assert.Empty(t, c.take())
	got := b.take()
	require.Len(t, got, 1)
	assert.Equal(t, core.EventActivity, got[0].Type)
	assert.Equal(t, "Alice", decodeAs[string](t, got[0]))
}

func TestDisconnectWithoutSessionBroadcastsNothing(t *testing.T) {
	o := newTestOrchestrator()
	a, b := connect(o, "A"), connect(o, "B")
	o.EnterRoom("B", "Bob", "lobby")
	a.take()
	b.take()

	o.OnDisconnect("A")

	assert.Empty(t, b.take())
	_, ok := o.Conns.Get("A")
	assert.False(t, ok)
}

func TestDisconnectedConnectionGetsNoGlobalUpdates(t *testing.T) {
	o := newTestOrchestrator()
	a, b := connect(o, "A"), connect(o, "B")
	o.OnDisconnect("A")
	a.take()

	o.EnterRoom("B", "Bob", "lobby")

	assert.Empty(t, a.take())
	assert.NotEmpty(t, b.take())
}

func TestSlowConnectionIsKickedAndOthersStillServed(t *testing.T) {
	o := newTestOrchestrator()
	a, b, c := connect(o, "A"), connect(o, "B"), connect(o, "C")
	o.EnterRoom("A", "Alice", "lobby")
	o.EnterRoom("B", "Bob", "lobby")
	o.EnterRoom("C", "Carol", "lobby")
	a.take()
	b.take()
	c.take()

	b.mu.Lock()
	b.err = core.ErrBackpressure
	b.mu.Unlock()
	c.mu.Lock()
	c.err = core.ErrConnClosed
	c.mu.Unlock()

	o.Message("A", "Alice", "hi")

	assert.Len(t, a.take(), 1)
	assert.True(t, b.closed)
	assert.False(t, c.closed)
	// Kicking does not touch presence; the transport reports the disconnect.
	assert.Len(t, o.Presence.ListByRoom("lobby"), 3)
}

func TestConcurrentEventsKeepOneSessionPerConnection(t *testing.T) {
	o := newTestOrchestrator()
	ids := []domain.ConnID{"A", "B", "C", "D"}
	for _, id := range ids {
		connect(o, id)
	}
	rooms := []domain.RoomName{"lobby", "games", "music"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id domain.ConnID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				o.EnterRoom(id, string(id), rooms[i%len(rooms)])
				o.Message(id, string(id), "x")
				o.Activity(id, string(id))
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, len(ids), o.Presence.Len())
	total := 0
	for _, r := range o.Presence.ActiveRooms() {
		total += len(o.Presence.ListByRoom(r))
	}
	assert.Equal(t, len(ids), total)
}
