// Package mc defines the boundary to the game-protocol client. The agent core
// consumes this interface; it never implements the wire protocol itself.
// Concrete clients register a dialer (driver-style) and are selected by name.
package mc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrNoDialer is returned by Dial when no protocol driver has been registered
// under the requested name.
var ErrNoDialer = errors.New("mc: no dialer registered")

// Position is a world coordinate.
type Position struct {
	X, Y, Z float64
}

// DistanceTo returns the euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", p.X, p.Y, p.Z)
}

// ItemCategory classifies inventory items for equip decisions.
type ItemCategory string

const (
	CategoryWeapon ItemCategory = "weapon"
	CategoryArmor  ItemCategory = "armor"
	CategoryFood   ItemCategory = "food"
	CategoryMisc   ItemCategory = "misc"
)

// ArmorSlot identifies one of the four wearable slots.
type ArmorSlot string

const (
	SlotHead  ArmorSlot = "head"
	SlotTorso ArmorSlot = "torso"
	SlotLegs  ArmorSlot = "legs"
	SlotFeet  ArmorSlot = "feet"
)

// ArmorSlots lists all wearable slots in equip order.
var ArmorSlots = []ArmorSlot{SlotHead, SlotTorso, SlotLegs, SlotFeet}

// Item is one inventory entry as reported by the client.
type Item struct {
	Name     string
	Category ItemCategory
	Slot     ArmorSlot // only meaningful for CategoryArmor
	Attack   float64   // offensive rating
	Armor    float64   // defensive rating
	Edible   bool
}

// Inventory is a point-in-time snapshot. The core never mutates it; callers
// take a fresh snapshot for every equip decision.
type Inventory []Item

// Entity is a snapshot of a world entity. Entities despawn at any time, so the
// core keeps only the ID and re-resolves through the client before acting.
type Entity struct {
	ID       int32
	Name     string
	Kind     string
	Position Position
}

// ControlState names a togglable movement control.
type ControlState string

const (
	ControlJump  ControlState = "jump"
	ControlSneak ControlState = "sneak"
)

// EventType identifies a client event.
type EventType string

const (
	EventSpawn       EventType = "spawn"
	EventChat        EventType = "chat"
	EventWhisper     EventType = "whisper"
	EventTick        EventType = "tick"
	EventCombatEnded EventType = "combat_ended"
	EventGoalReached EventType = "goal_reached"
	EventDeath       EventType = "death"
	EventKicked      EventType = "kicked"
	EventError       EventType = "error"
	EventEnd         EventType = "end"
)

// Event is one client event. Events for a single connection are delivered
// serially on the channel returned by Client.Events; EventEnd is always last.
type Event struct {
	Type   EventType
	Sender string // chat/whisper sender name
	Text   string // chat/whisper body
	Reason string // kick/end reason
	Err    error  // transport error (EventError)
}

// Client is the game-protocol collaborator. Action methods are best-effort:
// a returned error means the client refused the action, not that the
// connection is broken. Connection loss surfaces as EventEnd.
type Client interface {
	Close() error
	Events() <-chan Event

	Username() string
	Health() float64
	MaxHealth() float64
	Position() Position
	Inventory() Inventory
	Entities() []Entity
	Entity(id int32) (Entity, bool)
	PlayerByName(name string) (Entity, bool)

	Chat(text string) error
	Whisper(to, text string) error
	SetGoal(pos Position) error
	FollowEntity(id int32, within float64) error
	AttackEntity(id int32) error
	EquipItem(name string) error
	ConsumeHeldItem() error
	LookAt(pos Position) error
	SetControlState(state ControlState, on bool) error
}

// Options carries connection parameters to a dialer.
type Options struct {
	Host     string
	Port     int
	Version  string
	Username string
	Password string
	AuthMode string
}

// DialFunc connects and returns a live client.
type DialFunc func(ctx context.Context, opts Options) (Client, error)

var (
	dialersMu sync.RWMutex
	dialers   = make(map[string]DialFunc)
)

// RegisterDialer makes a protocol driver available under the given name.
// Drivers call this from their init, mirroring database/sql registration.
func RegisterDialer(name string, fn DialFunc) {
	dialersMu.Lock()
	defer dialersMu.Unlock()
	if fn == nil {
		panic("mc: RegisterDialer with nil DialFunc")
	}
	dialers[name] = fn
}

// Dialers returns the registered driver names, sorted.
func Dialers() []string {
	dialersMu.RLock()
	defer dialersMu.RUnlock()
	names := make([]string, 0, len(dialers))
	for name := range dialers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dial connects using the named driver.
func Dial(ctx context.Context, driver string, opts Options) (Client, error) {
	dialersMu.RLock()
	fn, ok := dialers[driver]
	dialersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrNoDialer, driver, Dialers())
	}
	return fn(ctx, opts)
}
