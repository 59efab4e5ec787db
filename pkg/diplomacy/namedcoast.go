package diplomacy

// NamedCoast is a first-class representation of one coast of a split-coast
// province (e.g. Spain's north and south coasts). Unlike a bare string
// suffix, a NamedCoast carries its own Neighbours list — the provinces a
// fleet attached to that specific coast can reach directly — so reachability
// never has to be reconstructed by concatenating and re-splitting strings.
//
// Neighbours is derived from DiplomacyMap.Adjacencies at query time, not
// hand-maintained, so it cannot drift from the adjacency table the resolver
// actually walks.
type NamedCoast struct {
	Province   string
	Coast      Coast
	Neighbours []string
}

// NamedCoasts returns the named coasts of a split-coast province, or nil if
// the province has none.
func (m *DiplomacyMap) NamedCoasts(id string) []NamedCoast {
	prov := m.Provinces[id]
	if prov == nil || len(prov.Coasts) == 0 {
		return nil
	}
	result := make([]NamedCoast, 0, len(prov.Coasts))
	for _, c := range prov.Coasts {
		result = append(result, NamedCoast{
			Province:   id,
			Coast:      c,
			Neighbours: m.namedCoastNeighbours(id, c),
		})
	}
	return result
}

// NamedCoastFor returns the NamedCoast a fleet at (province, coast) is
// attached to. Returns the zero value and false if the province has no
// named coasts, or coast is NoCoast.
func (m *DiplomacyMap) NamedCoastFor(province string, coast Coast) (NamedCoast, bool) {
	if coast == NoCoast {
		return NamedCoast{}, false
	}
	for _, nc := range m.NamedCoasts(province) {
		if nc.Coast == coast {
			return nc, true
		}
	}
	return NamedCoast{}, false
}

// ReachableFrom reports whether dst is among the provinces a fleet standing
// on this named coast can move to directly — the named-coast counterpart of
// DiplomacyMap.Adjacent, consulted instead of the flat adjacency scan
// whenever a fleet's current location is a named coast.
func (nc NamedCoast) ReachableFrom(dst string) bool {
	for _, n := range nc.Neighbours {
		if n == dst {
			return true
		}
	}
	return false
}

// namedCoastNeighbours returns the provinces a fleet on the given named
// coast can move to directly.
func (m *DiplomacyMap) namedCoastNeighbours(id string, coast Coast) []string {
	var result []string
	for _, adj := range m.Adjacencies[id] {
		if !adj.FleetOK {
			continue
		}
		if adj.FromCoast != NoCoast && adj.FromCoast != coast {
			continue
		}
		result = append(result, adj.To)
	}
	return result
}
