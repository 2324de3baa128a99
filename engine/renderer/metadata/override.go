package metadata

// Override is the user's choice for one part.
type Override struct {
	Colour string `json:"colour" toml:"colour"`
}

// OverrideMap maps mesh ids to overrides. It only grows during a session.
type OverrideMap map[string]Override

// Clone returns a copy safe to hand to another owner.
func (om OverrideMap) Clone() OverrideMap {
	out := make(OverrideMap, len(om))
	for k, v := range om {
		out[k] = v
	}
	return out
}

// PartSelection is the part picked last: its mesh id and material name.
type PartSelection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
