package ferry

// FerryGroups holds the hand-curated multi-quay groups (car-ferry
// triangles and quads). Membership overrides line-topology pairing:
// when one member is surfaced, every other member becomes a return
// destination.
type FerryGroups struct {
	groups [][]string
}

// NewFerryGroups normalizes the member names once up front.
func NewFerryGroups(groups [][]string) FerryGroups {
	normalized := make([][]string, 0, len(groups))
	for _, group := range groups {
		members := make([]string, 0, len(group))
		for _, name := range group {
			if n := NormalizeQuayName(name); n != "" {
				members = append(members, n)
			}
		}
		if len(members) >= 2 {
			normalized = append(normalized, members)
		}
	}
	return FerryGroups{groups: normalized}
}

// Others returns the normalized names of the other members of the
// group the quay belongs to, or nil when it belongs to none.
func (g FerryGroups) Others(quayName string) []string {
	name := NormalizeQuayName(quayName)
	if name == "" {
		return nil
	}
	for _, group := range g.groups {
		member := false
		for _, m := range group {
			if m == name {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		others := make([]string, 0, len(group)-1)
		for _, m := range group {
			if m != name {
				others = append(others, m)
			}
		}
		return others
	}
	return nil
}
