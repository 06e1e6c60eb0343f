package core

import "github.com/soulified/warden/internal/mc"

// Equipment selection is a pure decision layer over an inventory snapshot.
// Callers issue the actual equip action and must tolerate it failing; an
// empty result just means the agent fights bare-handed.

// BestWeapon returns the weapon with the highest offensive rating.
// Ties go to the item appearing first in the snapshot.
func BestWeapon(inv mc.Inventory) (mc.Item, bool) {
	return pickBest(inv, func(it mc.Item) bool {
		return it.Category == mc.CategoryWeapon
	}, func(it mc.Item) float64 {
		return it.Attack
	})
}

// BestArmor returns the armor piece with the highest defensive rating for the
// given slot. Ties go to the item appearing first in the snapshot.
func BestArmor(inv mc.Inventory, slot mc.ArmorSlot) (mc.Item, bool) {
	return pickBest(inv, func(it mc.Item) bool {
		return it.Category == mc.CategoryArmor && it.Slot == slot
	}, func(it mc.Item) float64 {
		return it.Armor
	})
}

// BestFood returns the first edible item in the snapshot.
func BestFood(inv mc.Inventory) (mc.Item, bool) {
	for _, it := range inv {
		if it.Edible {
			return it, true
		}
	}
	return mc.Item{}, false
}

// pickBest scans a snapshot once, keeping the first item with the maximum
// rating among those matching. Strictly-greater comparison preserves the
// original inventory order on ties.
func pickBest(inv mc.Inventory, match func(mc.Item) bool, rating func(mc.Item) float64) (mc.Item, bool) {
	var best mc.Item
	found := false
	for _, it := range inv {
		if !match(it) {
			continue
		}
		if !found || rating(it) > rating(best) {
			best = it
			found = true
		}
	}
	return best, found
}
