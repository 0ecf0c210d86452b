package actor

// DefaultScratchDamage is dealt when a monster does not specify its own.
const DefaultScratchDamage = 1

// Monster represents the creature of an encounter.
type Monster struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Damage      int    `json:"damage,omitempty"` // HP lost by a protagonist it scratches
}

// ScratchDamage returns the damage dealt to a protagonist who was not
// pulled clear in time.
func (m *Monster) ScratchDamage() int {
	if m == nil || m.Damage <= 0 {
		return DefaultScratchDamage
	}
	return m.Damage
}
