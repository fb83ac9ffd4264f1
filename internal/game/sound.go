package game

// SoundPing is a hearing-only signal: gunshots and footsteps. The radius
// shrinks over its lifetime.
type SoundPing struct {
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	TTL    float64 `json:"ttl"`
}

func (p SoundPing) live() bool { return p.TTL > 0 && p.Radius > 0 }

// pushSound queues a ping; pending pings join the live set at the start of
// the next phase that reads them.
func (w *World) pushSound(pos Vec2, radius, ttl float64) {
	if radius <= 0 || ttl <= 0 {
		return
	}
	w.pendingSounds = append(w.pendingSounds, SoundPing{Pos: pos, Radius: radius, TTL: ttl})
}

func (w *World) drainSounds() {
	if len(w.pendingSounds) == 0 {
		return
	}
	w.sounds = append(w.sounds, w.pendingSounds...)
	w.pendingSounds = w.pendingSounds[:0]
}

// decaySounds ages every ping and drops the expired ones in place.
func (w *World) decaySounds(dt float64) {
	w.drainSounds()
	shrink := w.cfg.TileSize * dt * 3
	kept := w.sounds[:0]
	for _, p := range w.sounds {
		p.TTL -= dt
		p.Radius -= shrink
		if p.live() {
			kept = append(kept, p)
		}
	}
	w.sounds = kept
}

// Sounds returns a copy of the live pings.
func (w *World) Sounds() []SoundPing {
	return append([]SoundPing(nil), w.sounds...)
}
