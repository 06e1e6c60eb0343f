package core

import (
	"testing"

	"github.com/soulified/warden/internal/mc"
)

func TestBestWeaponPicksHighestAttack(t *testing.T) {
	inv := mc.Inventory{
		{Name: "stone_sword", Category: mc.CategoryWeapon, Attack: 5},
		{Name: "diamond_sword", Category: mc.CategoryWeapon, Attack: 7},
		{Name: "bread", Category: mc.CategoryFood, Edible: true},
	}

	it, ok := BestWeapon(inv)
	if !ok {
		t.Fatal("BestWeapon() found nothing")
	}
	if it.Name != "diamond_sword" {
		t.Errorf("expected diamond_sword, got %s", it.Name)
	}
}

func TestBestWeaponTieKeepsFirst(t *testing.T) {
	inv := mc.Inventory{
		{Name: "iron_sword_a", Category: mc.CategoryWeapon, Attack: 6},
		{Name: "iron_sword_b", Category: mc.CategoryWeapon, Attack: 6},
	}

	it, ok := BestWeapon(inv)
	if !ok {
		t.Fatal("BestWeapon() found nothing")
	}
	if it.Name != "iron_sword_a" {
		t.Errorf("tie should keep first item, got %s", it.Name)
	}
}

func TestBestWeaponEmptyInventory(t *testing.T) {
	if _, ok := BestWeapon(nil); ok {
		t.Error("expected no weapon from empty inventory")
	}
	inv := mc.Inventory{{Name: "bread", Category: mc.CategoryFood, Edible: true}}
	if _, ok := BestWeapon(inv); ok {
		t.Error("expected no weapon from weaponless inventory")
	}
}

func TestBestArmorFiltersBySlot(t *testing.T) {
	inv := mc.Inventory{
		{Name: "iron_helmet", Category: mc.CategoryArmor, Slot: mc.SlotHead, Armor: 2},
		{Name: "diamond_chestplate", Category: mc.CategoryArmor, Slot: mc.SlotTorso, Armor: 8},
		{Name: "diamond_helmet", Category: mc.CategoryArmor, Slot: mc.SlotHead, Armor: 3},
	}

	it, ok := BestArmor(inv, mc.SlotHead)
	if !ok {
		t.Fatal("BestArmor() found nothing")
	}
	if it.Name != "diamond_helmet" {
		t.Errorf("expected diamond_helmet, got %s", it.Name)
	}

	if _, ok := BestArmor(inv, mc.SlotFeet); ok {
		t.Error("expected no boots in inventory")
	}
}

func TestBestFoodReturnsFirstEdible(t *testing.T) {
	inv := mc.Inventory{
		{Name: "stone_sword", Category: mc.CategoryWeapon, Attack: 5},
		{Name: "bread", Category: mc.CategoryFood, Edible: true},
		{Name: "steak", Category: mc.CategoryFood, Edible: true},
	}

	it, ok := BestFood(inv)
	if !ok {
		t.Fatal("BestFood() found nothing")
	}
	if it.Name != "bread" {
		t.Errorf("expected first edible item, got %s", it.Name)
	}

	if _, ok := BestFood(mc.Inventory{{Name: "rotten_flesh", Category: mc.CategoryFood}}); ok {
		t.Error("inedible food should not be selected")
	}
}
