package chem

import "slices"

// MurckoScaffold returns the Bemis-Murcko framework of m: every ring atom and
// every linker atom on a path between rings. Side chains are pruned, but an
// atom double-bonded to the framework (a ring carbonyl oxygen, an oxime
// nitrogen or an exocyclic alkene carbon) is kept without its own substituents. Fragments without rings disappear, so an acyclic molecule
// yields an empty graph.
//
// Atoms that lose substituents keep a valid valence: bracket atoms gain
// explicit hydrogens and an aromatic nitrogen or phosphorus becomes [nH]/[pH].
// Stereo descriptors and atom classes are dropped.
func MurckoScaffold(m *Molecule) *Molecule {
	ringBonds := m.ringBondMask()
	inRing := m.ringAtomMask(ringBonds)

	n := len(m.Atoms)
	keep := make([]bool, n)
	degree := make([]int, n)
	var queue []int
	for i := 0; i < n; i++ {
		keep[i] = true
		degree[i] = len(m.adj[i])
		if !inRing[i] && degree[i] <= 1 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if !keep[a] || inRing[a] || degree[a] > 1 {
			continue
		}
		keep[a] = false
		for _, b := range m.adj[a] {
			v := m.other(b, a)
			if !keep[v] {
				continue
			}
			degree[v]--
			if !inRing[v] && degree[v] <= 1 {
				queue = append(queue, v)
			}
		}
	}

	// Restore atoms double-bonded to the framework, whatever their degree.
	// Only direct neighbours of the framework come back.
	framework := slices.Clone(keep)
	for a := 0; a < n; a++ {
		if framework[a] {
			continue
		}
		for _, b := range m.adj[a] {
			if m.Bonds[b].Order == BondDouble && framework[m.other(b, a)] {
				keep[a] = true
				break
			}
		}
	}

	out := &Molecule{}
	index := make([]int, n)
	for i := 0; i < n; i++ {
		index[i] = -1
		if !keep[i] {
			continue
		}
		a := m.Atoms[i]
		a.Chiral = ""
		a.Class = 0
		lost := 0
		for _, b := range m.adj[i] {
			if !keep[m.other(b, i)] {
				lost += m.Bonds[b].Order.valence()
			}
		}
		if lost > 0 {
			switch {
			case a.Bracket:
				a.HCount += lost
			case a.Aromatic && (a.Element == "N" || a.Element == "P"):
				a.Bracket = true
				a.HCount = 1
			}
		}
		index[i] = out.addAtom(a)
	}
	for _, b := range m.Bonds {
		if keep[b.From] && keep[b.To] {
			out.addBond(index[b.From], index[b.To], b.Order)
		}
	}
	return out
}
