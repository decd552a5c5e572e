// Package group implements affiliation rosters: which characters belong
// to which group, and the ally/enemy queries scripts need indirectly
// through a character's own CHARACTER_GROUP property.
package group

import "sort"

// Registry tracks group membership by character id. A character belongs
// to at most one group at a time; joining a new group implicitly leaves
// the old one.
type Registry struct {
	groupOf map[uint16]uint8
	members map[uint8]map[uint16]bool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groupOf: make(map[uint16]uint8),
		members: make(map[uint8]map[uint16]bool),
	}
}

// Join adds characterID to groupID, removing it from any group it
// previously belonged to.
func (r *Registry) Join(characterID uint16, groupID uint8) {
	if old, ok := r.groupOf[characterID]; ok {
		if old == groupID {
			return
		}
		r.leaveCurrent(characterID, old)
	}
	r.groupOf[characterID] = groupID
	if r.members[groupID] == nil {
		r.members[groupID] = make(map[uint16]bool)
	}
	r.members[groupID][characterID] = true
}

// Leave removes characterID from whatever group it belongs to. A
// character not in any group is a no-op.
func (r *Registry) Leave(characterID uint16) {
	groupID, ok := r.groupOf[characterID]
	if !ok {
		return
	}
	r.leaveCurrent(characterID, groupID)
	delete(r.groupOf, characterID)
}

func (r *Registry) leaveCurrent(characterID uint16, groupID uint8) {
	if roster, ok := r.members[groupID]; ok {
		delete(roster, characterID)
		if len(roster) == 0 {
			delete(r.members, groupID)
		}
	}
}

// GroupOf reports the group a character belongs to, and whether it
// belongs to any group at all.
func (r *Registry) GroupOf(characterID uint16) (uint8, bool) {
	g, ok := r.groupOf[characterID]
	return g, ok
}

// Members returns the character ids in groupID, sorted ascending for
// deterministic iteration.
func (r *Registry) Members(groupID uint8) []uint16 {
	roster := r.members[groupID]
	ids := make([]uint16, 0, len(roster))
	for id := range roster {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AreAllies reports whether a and b belong to the same group. A
// character with no group is never an ally of anyone, including itself
// compared against another groupless character.
func (r *Registry) AreAllies(a, b uint16) bool {
	ga, aok := r.groupOf[a]
	gb, bok := r.groupOf[b]
	return aok && bok && ga == gb
}

// AreEnemies is the complement of AreAllies for two characters that each
// belong to some group; two groupless characters are neither allies nor
// enemies.
func (r *Registry) AreEnemies(a, b uint16) bool {
	_, aok := r.groupOf[a]
	_, bok := r.groupOf[b]
	if !aok || !bok {
		return false
	}
	return !r.AreAllies(a, b)
}
