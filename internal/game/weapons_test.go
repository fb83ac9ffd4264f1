package game

import "testing"

func TestNewWeapon_DefaultsAndOverrides(t *testing.T) {
	w := NewWeapon(WeaponWelrod, -1, -1)
	if w.Mag != 6 || w.Reserve != 18 {
		t.Fatalf("welrod defaults: mag=%d reserve=%d", w.Mag, w.Reserve)
	}
	w = NewWeapon(WeaponWelrod, 2, 0)
	if w.Mag != 2 || w.Reserve != 0 {
		t.Fatalf("overrides not applied: mag=%d reserve=%d", w.Mag, w.Reserve)
	}
}

func TestWeapon_FireCooldownAndEmpty(t *testing.T) {
	w := NewWeapon(WeaponKar98k, 1, 0)
	if !w.CanFire() {
		t.Fatal("fresh weapon should fire")
	}
	w.consumeShot()
	if w.CanFire() {
		t.Fatal("empty weapon in cooldown should not fire")
	}
	w.Update(1)
	if w.FireTimer != 0 {
		t.Fatalf("cooldown should have expired, got %.2f", w.FireTimer)
	}
	if w.CanFire() {
		t.Fatal("empty magazine should not fire")
	}
	if w.StartReload() {
		t.Fatal("no reserve: reload should not start")
	}
}

func TestWeapon_ReloadTransfersFromReserve(t *testing.T) {
	w := NewWeapon(WeaponKar98k, 0, 3)
	if !w.StartReload() {
		t.Fatal("reload should start")
	}
	if w.CanFire() {
		t.Fatal("cannot fire while reloading")
	}
	if w.StartReload() {
		t.Fatal("second reload should be refused")
	}
	w.Update(1)
	if !w.Reloading {
		t.Fatal("reload finished too early")
	}
	w.Update(w.ID.Def().ReloadTime)
	if w.Reloading || w.Mag != 3 || w.Reserve != 0 {
		t.Fatalf("after reload: reloading=%v mag=%d reserve=%d", w.Reloading, w.Mag, w.Reserve)
	}
}

func TestWeapon_FullMagDoesNotReload(t *testing.T) {
	w := NewWeapon(WeaponMP40, -1, -1)
	if w.StartReload() {
		t.Fatal("full magazine should not reload")
	}
}

func TestParseWeaponID(t *testing.T) {
	for _, s := range []string{"welrod", "WELROD", "Welrod (Silenced)"} {
		id, err := ParseWeaponID(s)
		if err != nil || id != WeaponWelrod {
			t.Fatalf("ParseWeaponID(%q) = %v, %v", s, id, err)
		}
	}
	if _, err := ParseWeaponID("railgun"); err == nil {
		t.Fatal("expected an error for an unknown weapon")
	}
}

func TestPickFactionWeapon_RespectsTierBand(t *testing.T) {
	rng := NewRand(3)
	for f := Faction(0); f < factionCount; f++ {
		lo, hi := factionTiers[f][0], factionTiers[f][1]
		for i := 0; i < 50; i++ {
			id := PickFactionWeapon(f, rng)
			tier := id.Def().Tier
			if id == WeaponNone || tier < lo || tier > hi {
				t.Fatalf("%s drew %s (tier %s) outside %s..%s", f, id, tier, lo, hi)
			}
		}
	}
}
