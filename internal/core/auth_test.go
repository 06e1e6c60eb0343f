package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// runAuth drives a handshake on a goroutine and returns the outcome channel.
func runAuth(ctx context.Context, a *Authenticator) <-chan AuthOutcome {
	out := make(chan AuthOutcome, 1)
	go func() {
		out <- a.Run(ctx)
	}()
	return out
}

// waitForChats polls until the fake client has sent n chat lines.
func waitForChats(t *testing.T, client *fakeClient, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		chats := client.Chats()
		if len(chats) >= n {
			return chats
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d chat lines, got %v", n, client.Chats())
	return nil
}

func TestAuthRegisterThenLogin(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", time.Second, nil)

	outCh := runAuth(context.Background(), a)

	chats := waitForChats(t, client, 1)
	if chats[0] != "/register hunter2 hunter2" {
		t.Fatalf("expected register command first, got %q", chats[0])
	}

	a.Offer("You have successfully registered!")

	chats = waitForChats(t, client, 2)
	if chats[1] != "/login hunter2" {
		t.Fatalf("expected login after register ack, got %q", chats[1])
	}

	a.Offer("You have successfully logged in!")

	out := <-outCh
	if out.Result != AuthOK {
		t.Fatalf("expected success, got %v (%s)", out.Result, out.Reason)
	}
	if a.State() != AuthAuthenticated {
		t.Errorf("expected authenticated state, got %s", a.State())
	}
}

func TestAuthAlreadyRegisteredProceedsToLogin(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", time.Second, nil)

	outCh := runAuth(context.Background(), a)
	waitForChats(t, client, 1)

	a.Offer("You are already registered on this server.")
	chats := waitForChats(t, client, 2)
	if !strings.HasPrefix(chats[1], "/login") {
		t.Fatalf("already-registered should count as register success, got %q", chats[1])
	}

	a.Offer("successfully logged in")
	out := <-outCh
	if out.Result != AuthOK {
		t.Fatalf("expected success, got %v", out.Result)
	}
}

func TestAuthLoginNeverSentBeforeRegisterAck(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	outCh := runAuth(ctx, a)

	waitForChats(t, client, 1)
	// Chat lines that are not acks must not advance the handshake.
	a.Offer("Welcome to the server!")
	a.Offer("PlayerX joined the game")
	time.Sleep(50 * time.Millisecond)

	if chats := client.Chats(); len(chats) != 1 {
		t.Fatalf("login sent without register ack: %v", chats)
	}
	cancel()
	<-outCh
}

func TestAuthRejection(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", time.Second, nil)

	outCh := runAuth(context.Background(), a)
	waitForChats(t, client, 1)

	a.Offer("successfully registered")
	waitForChats(t, client, 2)
	a.Offer("Invalid password, please try again")

	out := <-outCh
	if out.Result != AuthFail {
		t.Fatalf("expected failure, got %v", out.Result)
	}
	if a.State() != AuthFailed {
		t.Errorf("expected failed state, got %s", a.State())
	}
}

func TestAuthStepTimeout(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", 20*time.Millisecond, nil)

	out := <-runAuth(context.Background(), a)
	if out.Result != AuthTimedOut {
		t.Fatalf("expected timeout, got %v", out.Result)
	}
}

func TestAuthOfferDroppedWhenInactive(t *testing.T) {
	client := newFakeClient("Warden")
	a := NewAuthenticator(client, "hunter2", time.Second, nil)

	// Not running: offers must be dropped, not buffered for a later run.
	a.Offer("successfully registered")
	a.Offer("successfully logged in")

	outCh := runAuth(context.Background(), a)
	waitForChats(t, client, 1)
	time.Sleep(50 * time.Millisecond)

	if chats := client.Chats(); len(chats) != 1 {
		t.Fatalf("stale offers advanced the handshake: %v", chats)
	}

	a.Offer("successfully registered")
	waitForChats(t, client, 2)
	a.Offer("successfully logged in")
	if out := <-outCh; out.Result != AuthOK {
		t.Fatalf("expected success, got %v", out.Result)
	}
}

func TestAuthNotifiesStateChanges(t *testing.T) {
	client := newFakeClient("Warden")

	var mu sync.Mutex
	var seen []AuthState
	notify := func(s AuthState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}

	a := NewAuthenticator(client, "hunter2", time.Second, notify)
	outCh := runAuth(context.Background(), a)

	waitForChats(t, client, 1)
	a.Offer("successfully registered")
	waitForChats(t, client, 2)
	a.Offer("successfully logged in")
	<-outCh

	mu.Lock()
	defer mu.Unlock()
	want := []AuthState{AuthAwaitingRegisterAck, AuthAwaitingLoginAck, AuthAuthenticated}
	if len(seen) != len(want) {
		t.Fatalf("expected states %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("state %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}
