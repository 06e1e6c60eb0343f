package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/constants"
	"github.com/soulified/warden/internal/mc"
)

// Arbiter owns the agent's intent and decides navigation and attack actions
// once per simulation tick. It is the single writer of the intent; the
// dispatcher only requests transitions. All client action calls are
// fire-and-forget: a rejected action means "no effect this tick", never a
// reason to change intent.
type Arbiter struct {
	client    mc.Client
	bus       *EventBus
	sessionID string

	mu       sync.RWMutex
	mode     IntentMode
	anchor   *mc.Position
	targetID int32

	// engagedID tracks the hostile currently being fought while guarding so
	// gear selection runs once per engagement, not every tick.
	engagedID int32
}

// NewArbiter creates an arbiter bound to one session's client. bus may be nil.
func NewArbiter(client mc.Client, bus *EventBus, sessionID string) *Arbiter {
	return &Arbiter{
		client:    client,
		bus:       bus,
		sessionID: sessionID,
		mode:      IntentIdle,
	}
}

// Intent returns a snapshot of the current intent.
func (ar *Arbiter) Intent() Intent {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	it := Intent{Mode: ar.mode, TargetID: ar.targetID}
	if ar.anchor != nil {
		anchor := *ar.anchor
		it.Anchor = &anchor
	}
	return it
}

// SetGuard installs the guard anchor and walks the agent to it. While
// pursuing, the anchor is stored but the pursuit keeps priority.
func (ar *Arbiter) SetGuard(anchor mc.Position) {
	ar.mu.Lock()
	ar.anchor = &anchor
	changed := false
	if ar.mode != IntentPursuing {
		ar.mode = IntentGuarding
		changed = true
	}
	ar.mu.Unlock()

	ar.tryAction("goal", func() error { return ar.client.SetGoal(anchor) })
	if changed {
		ar.publishIntent()
	}
}

// ClearGuard drops the anchor. A guarding agent falls back to idle.
func (ar *Arbiter) ClearGuard() {
	ar.mu.Lock()
	ar.anchor = nil
	changed := false
	if ar.mode == IntentGuarding {
		ar.mode = IntentIdle
		changed = true
	}
	ar.mu.Unlock()

	if changed {
		ar.publishIntent()
	}
}

// RequestPursue transitions to pursuit of the given entity. The caller has
// resolved the entity once; the arbiter re-resolves it every tick and reverts
// on its own when the target despawns. The anchor is retained for later.
func (ar *Arbiter) RequestPursue(targetID int32) {
	ar.equipWeapon()

	ar.mu.Lock()
	ar.mode = IntentPursuing
	ar.targetID = targetID
	ar.mu.Unlock()

	ar.publishIntent()
}

// CombatEnded is routed from the client's combat-ended signal. A guarding
// agent walks back to its anchor; other modes ignore it.
func (ar *Arbiter) CombatEnded() {
	ar.mu.Lock()
	ar.engagedID = 0
	mode := ar.mode
	var anchor *mc.Position
	if ar.anchor != nil {
		a := *ar.anchor
		anchor = &a
	}
	ar.mu.Unlock()

	if mode == IntentGuarding && anchor != nil {
		ar.tryAction("goal", func() error { return ar.client.SetGoal(*anchor) })
	}
}

// EquipArmorAll fits the best available piece into each of the four slots.
// Called once on session start. Absence of gear is a valid state.
func (ar *Arbiter) EquipArmorAll() {
	inv := ar.client.Inventory()
	for _, slot := range mc.ArmorSlots {
		if it, ok := BestArmor(inv, slot); ok {
			ar.tryAction("equip", func() error { return ar.client.EquipItem(it.Name) })
		}
	}
}

// Tick runs one decision cycle. The eat interrupt preempts everything for the
// tick and normal behavior resumes next tick regardless of whether it worked.
func (ar *Arbiter) Tick() {
	if ar.tickEat() {
		return
	}

	ar.mu.RLock()
	mode := ar.mode
	ar.mu.RUnlock()

	switch mode {
	case IntentPursuing:
		ar.tickPursue()
	case IntentGuarding:
		ar.tickGuard()
	default:
		ar.tickIdle()
	}
}

// tickEat issues an equip-then-consume sequence for the best food item when
// health is below the threshold. Returns true when the interrupt fired.
func (ar *Arbiter) tickEat() bool {
	if ar.client.Health() >= constants.EatHealthThreshold {
		return false
	}
	food, ok := BestFood(ar.client.Inventory())
	if !ok {
		return false
	}
	ar.tryAction("equip", func() error { return ar.client.EquipItem(food.Name) })
	ar.tryAction("consume", func() error { return ar.client.ConsumeHeldItem() })
	return true
}

func (ar *Arbiter) tickPursue() {
	ar.mu.RLock()
	targetID := ar.targetID
	ar.mu.RUnlock()

	if _, ok := ar.client.Entity(targetID); !ok {
		ar.dropTarget()
		return
	}

	ar.tryAction("follow", func() error { return ar.client.FollowEntity(targetID, constants.PursuitRange) })
	ar.tryAction("attack", func() error { return ar.client.AttackEntity(targetID) })
}

// dropTarget leaves pursuit: back to guarding when an anchor exists, idle
// otherwise.
func (ar *Arbiter) dropTarget() {
	ar.mu.Lock()
	ar.targetID = 0
	var anchor *mc.Position
	if ar.anchor != nil {
		a := *ar.anchor
		anchor = &a
		ar.mode = IntentGuarding
	} else {
		ar.mode = IntentIdle
	}
	ar.mu.Unlock()

	log.Debug().Msg("pursuit target unresolvable, reverting")
	if anchor != nil {
		ar.tryAction("goal", func() error { return ar.client.SetGoal(*anchor) })
	}
	ar.publishIntent()
}

func (ar *Arbiter) tickGuard() {
	hostile, ok := ar.nearestHostile()
	if !ok {
		return
	}

	ar.mu.Lock()
	newEngagement := ar.engagedID != hostile.ID
	ar.engagedID = hostile.ID
	ar.mu.Unlock()

	if newEngagement {
		ar.equipWeapon()
		log.Info().Str("kind", hostile.Kind).Int32("entity", hostile.ID).Msg("engaging hostile near anchor")
	}
	ar.tryAction("attack", func() error { return ar.client.AttackEntity(hostile.ID) })
}

// tickIdle is purely cosmetic: face the nearest entity. Never issues
// movement or attack.
func (ar *Arbiter) tickIdle() {
	self := ar.client.Position()
	var nearest *mc.Entity
	best := 0.0
	for _, e := range ar.client.Entities() {
		d := self.DistanceTo(e.Position)
		if nearest == nil || d < best {
			ent := e
			nearest = &ent
			best = d
		}
	}
	if nearest != nil {
		ar.tryAction("look", func() error { return ar.client.LookAt(nearest.Position) })
	}
}

// nearestHostile scans entities within the guard radius, skipping kinds on
// the harmless denylist, and returns the closest.
func (ar *Arbiter) nearestHostile() (mc.Entity, bool) {
	self := ar.client.Position()
	var nearest mc.Entity
	found := false
	best := 0.0
	for _, e := range ar.client.Entities() {
		if constants.HarmlessKinds[e.Kind] {
			continue
		}
		d := self.DistanceTo(e.Position)
		if d > constants.GuardRadius {
			continue
		}
		if !found || d < best {
			nearest = e
			found = true
			best = d
		}
	}
	return nearest, found
}

func (ar *Arbiter) equipWeapon() {
	if it, ok := BestWeapon(ar.client.Inventory()); ok {
		ar.tryAction("equip", func() error { return ar.client.EquipItem(it.Name) })
	}
}

// tryAction runs a client action and swallows rejection. Rejections are
// routine: inventory contents and reachability vary every run.
func (ar *Arbiter) tryAction(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Debug().Err(err).Str("action", name).Msg("client rejected action")
		if ar.bus != nil {
			ar.bus.Publish(Event{
				Type:      EventActionRejected,
				SessionID: ar.sessionID,
				Message:   fmt.Sprintf("%s: %v", name, err),
				Timestamp: time.Now(),
			})
		}
	}
}

func (ar *Arbiter) publishIntent() {
	if ar.bus == nil {
		return
	}
	it := ar.Intent()
	ar.bus.Publish(Event{
		Type:      EventIntentChanged,
		SessionID: ar.sessionID,
		Message:   string(it.Mode),
		Timestamp: time.Now(),
	})
}
