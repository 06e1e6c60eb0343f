package core

import (
	"fmt"
	"sync"

	"github.com/soulified/warden/internal/mc"
)

// fakeClient is an in-memory mc.Client recording every action for assertions.
type fakeClient struct {
	mu sync.Mutex

	username  string
	health    float64
	position  mc.Position
	inventory mc.Inventory
	entities  map[int32]mc.Entity

	events chan mc.Event
	closed bool

	chats    []string
	whispers []string
	goals    []mc.Position
	follows  []int32
	attacks  []int32
	equips   []string
	consumes int
	looks    []mc.Position
	controls map[mc.ControlState]bool

	chatErr error
}

func newFakeClient(username string) *fakeClient {
	return &fakeClient{
		username: username,
		health:   20,
		entities: make(map[int32]mc.Entity),
		events:   make(chan mc.Event, 64),
		controls: make(map[mc.ControlState]bool),
	}
}

func (f *fakeClient) addEntity(e mc.Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities[e.ID] = e
}

func (f *fakeClient) removeEntity(id int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entities, id)
}

func (f *fakeClient) setHealth(h float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = h
}

func (f *fakeClient) setInventory(inv mc.Inventory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory = inv
}

func (f *fakeClient) emit(ev mc.Event) {
	f.events <- ev
}

func (f *fakeClient) end(reason string) {
	f.events <- mc.Event{Type: mc.EventEnd, Reason: reason}
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) Events() <-chan mc.Event { return f.events }

func (f *fakeClient) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

func (f *fakeClient) Health() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health
}

func (f *fakeClient) MaxHealth() float64 { return 20 }

func (f *fakeClient) Position() mc.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeClient) Inventory() mc.Inventory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inventory
}

func (f *fakeClient) Entities() []mc.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mc.Entity, 0, len(f.entities))
	for _, e := range f.entities {
		out = append(out, e)
	}
	return out
}

func (f *fakeClient) Entity(id int32) (mc.Entity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entities[id]
	return e, ok
}

func (f *fakeClient) PlayerByName(name string) (mc.Entity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entities {
		if e.Kind == "player" && e.Name == name {
			return e, true
		}
	}
	return mc.Entity{}, false
}

func (f *fakeClient) Chat(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return f.chatErr
	}
	f.chats = append(f.chats, text)
	return nil
}

func (f *fakeClient) Whisper(to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, fmt.Sprintf("%s: %s", to, text))
	return nil
}

func (f *fakeClient) SetGoal(pos mc.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = append(f.goals, pos)
	return nil
}

func (f *fakeClient) FollowEntity(id int32, within float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, id)
	return nil
}

func (f *fakeClient) AttackEntity(id int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attacks = append(f.attacks, id)
	return nil
}

func (f *fakeClient) EquipItem(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.equips = append(f.equips, name)
	return nil
}

func (f *fakeClient) ConsumeHeldItem() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumes++
	return nil
}

func (f *fakeClient) LookAt(pos mc.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.looks = append(f.looks, pos)
	return nil
}

func (f *fakeClient) SetControlState(state mc.ControlState, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls[state] = on
	return nil
}

func (f *fakeClient) Chats() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.chats...)
}

func (f *fakeClient) Whispers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.whispers...)
}

func (f *fakeClient) Goals() []mc.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mc.Position(nil), f.goals...)
}

func (f *fakeClient) Attacks() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.attacks...)
}

func (f *fakeClient) Follows() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.follows...)
}

func (f *fakeClient) Equips() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.equips...)
}

func (f *fakeClient) Consumes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.consumes
}

func (f *fakeClient) Looks() []mc.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mc.Position(nil), f.looks...)
}

func (f *fakeClient) Control(state mc.ControlState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.controls[state]
}

func (f *fakeClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
