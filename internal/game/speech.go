package game

// Bark is a short line of floating text spoken at a world position.
type Bark struct {
	Pos  Vec2    `json:"pos"`
	Text string  `json:"text"`
	TTL  float64 `json:"ttl"`
}

const (
	spottedBarkChance   = 0.20
	spottedBarkTTL      = 1.9
	spottedBarkCooldown = 2.6
	intelBarkTTL        = 2.3
	intelBarkCooldown   = 6.0
)

// say records a bark spoken by s when barks are enabled.
func (w *World) say(s *Soldier, text string, ttl float64) {
	if !w.cfg.BarksEnabled || text == "" {
		return
	}
	w.barks = append(w.barks, Bark{Pos: s.pos, Text: text, TTL: ttl})
	w.thoughts.Add(w.tick, s.label, s.faction, text)
}

// calloutPlayer pushes a player bark when the throttle allows.
func (w *World) calloutPlayer(pos Vec2, text string, ttl, throttle float64) {
	p := w.player
	if p == nil || w.clock < p.nextCallout {
		return
	}
	if !w.cfg.BarksEnabled {
		return
	}
	w.barks = append(w.barks, Bark{Pos: pos, Text: text, TTL: ttl})
	p.nextCallout = w.clock + throttle
}

func (w *World) decayBarks(dt float64) {
	kept := w.barks[:0]
	for _, b := range w.barks {
		b.TTL -= dt
		if b.TTL > 0 {
			kept = append(kept, b)
		}
	}
	w.barks = kept
}

// --- Lines ---

// factionLabel is what speaker calls target.
func factionLabel(speaker, target Faction) string {
	switch speaker {
	case FactionRebels:
		switch target {
		case FactionAxis:
			return "fascists"
		case FactionMilitia:
			return "rats"
		case FactionAllies:
			return "rookies"
		}
	case FactionMilitia:
		switch target {
		case FactionAxis:
			return "comrade!"
		case FactionAllies:
			return "dogs"
		case FactionRebels:
			return "scum"
		}
	case FactionAxis:
		switch target {
		case FactionMilitia:
			return "boys"
		case FactionRebels:
			return "scum"
		case FactionAllies:
			return "foreign dogs"
		}
	default:
		switch target {
		case FactionAxis:
			return "fascists"
		case FactionMilitia:
			return "trash"
		case FactionRebels:
			return "resistance"
		}
	}
	return "them"
}

func barkSpottedEnemy(speaker, target Faction, dir string) string {
	label := factionLabel(speaker, target)
	switch {
	case speaker == FactionMilitia && target == FactionAxis:
		return label + " " + dir + "!"
	case speaker == FactionAxis && target == FactionMilitia:
		return "Militia " + label + "! Look alive!"
	}
	return label + " to the " + dir + "!"
}

var planBarks = [factionCount][intentCount]string{
	FactionAxis: {
		IntentHold:    "Hold. Watch your sector.",
		IntentAdvance: "Advance. Keep pressure.",
		IntentFlank:   "Flank them. Schnell!",
		IntentRetreat: "Fall back. Re-form!",
		IntentSearch:  "Sweep. Find them.",
	},
	FactionAllies: {
		IntentHold:    "Hold. Cover that lane.",
		IntentAdvance: "Move up. Stay sharp.",
		IntentFlank:   "Flank. Go!",
		IntentRetreat: "Back! Find cover!",
		IntentSearch:  "Sweep it. Eyes open.",
	},
	FactionRebels: {
		IntentHold:    "Hold here. Stay low.",
		IntentAdvance: "Push! Push!",
		IntentFlank:   "Around the side! Move!",
		IntentRetreat: "Back! Back!",
		IntentSearch:  "They're close. Check corners!",
	},
	FactionMilitia: {
		IntentHold:    "Stay put. Don't die.",
		IntentAdvance: "Go on... go on!",
		IntentFlank:   "Try the side...!",
		IntentRetreat: "Run! Find cover!",
		IntentSearch:  "Look around... carefully.",
	},
}

func planBark(f Faction, in SquadIntent) string {
	if f >= factionCount || in >= intentCount {
		return "Move!"
	}
	return planBarks[f][in]
}

func calmBark(f Faction) string {
	switch f {
	case FactionAxis:
		return "All clear. Stay alert."
	case FactionAllies:
		return "Quiet... for now."
	case FactionRebels:
		return "Nothing. Keep moving."
	case FactionMilitia:
		return "I don't like this..."
	default:
		return "All clear."
	}
}

func calloutPlayerHit(z HitZone) string {
	switch z {
	case ZoneHead:
		return "Direct hit! Head!"
	case ZoneLegs:
		return "Tagged the legs!"
	case ZoneArmL:
		return "Snagged left arm!"
	case ZoneArmR:
		return "Snagged right arm!"
	default:
		return "Good hit! Center mass!"
	}
}

func calloutPlayerHurt(z HitZone) string {
	switch z {
	case ZoneHead:
		return "I'm hit! Head!"
	case ZoneLegs:
		return "I'm hit! Leg!"
	case ZoneArmL, ZoneArmR:
		return "I'm hit! Arm!"
	default:
		return "I'm hit! Torso!"
	}
}

// Barks returns a copy of the live barks.
func (w *World) Barks() []Bark {
	return append([]Bark(nil), w.barks...)
}
