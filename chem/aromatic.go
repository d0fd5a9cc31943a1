package chem

import (
	"slices"
	"strconv"
	"strings"
)

// perceiveAromaticity rewrites Kekulé rings that satisfy Hückel's 4n+2 rule
// into aromatic form, so that "C1=CC=CC=C1" and "c1ccccc1" build the same
// graph. Single rings are tested first, then pairs of fused rings (azulene).
// Rings that already contain a lowercase atom are left as written.
//
// A ring atom contributes one pi electron when it is double-bonded to another
// ring atom, none when its double bond is exocyclic to a chain atom (a ring
// carbonyl) and two when it carries a lone pair (pyrrole-type N, furan O,
// thiophene S, a carbanion). Any other atom disqualifies the ring.
func (m *Molecule) perceiveAromaticity() {
	ringBonds := m.ringBondMask()
	ringAtoms := m.ringAtomMask(ringBonds)

	electrons := make([]int, len(m.Atoms))
	eligible := make([]bool, len(m.Atoms))
	for i := range m.Atoms {
		if ringAtoms[i] {
			electrons[i], eligible[i] = m.piElectrons(i, ringAtoms)
		}
	}

	var rings [][]int
	for _, r := range m.smallestRings(ringBonds) {
		if !slices.ContainsFunc(r, func(a int) bool { return !eligible[a] }) {
			rings = append(rings, r)
		}
	}
	if len(rings) == 0 {
		return
	}

	aromatic := make([]bool, len(m.Atoms))
	aromaticBond := make([]bool, len(m.Bonds))
	mark := func(r []int) {
		for i, a := range r {
			aromatic[a] = true
			aromaticBond[m.bondBetween(a, r[(i+1)%len(r)])] = true
		}
	}
	sum := func(atoms []int) int {
		total := 0
		for _, a := range atoms {
			total += electrons[a]
		}
		return total
	}

	for _, r := range rings {
		if huckel(sum(r)) {
			mark(r)
		}
	}
	for i := range rings {
		for j := i + 1; j < len(rings); j++ {
			union := fusedUnion(rings[i], rings[j])
			if union != nil && huckel(sum(union)) {
				mark(rings[i])
				mark(rings[j])
			}
		}
	}

	hydrogens := make([]int, len(m.Atoms))
	for i := range m.Atoms {
		if aromatic[i] {
			hydrogens[i] = m.totalHydrogens(i)
		}
	}
	for b := range m.Bonds {
		if aromaticBond[b] {
			m.Bonds[b].Order = BondAromatic
		}
	}
	for i := range m.Atoms {
		if !aromatic[i] {
			continue
		}
		m.Atoms[i].Aromatic = true
		if !m.Atoms[i].Bracket && m.impliedHydrogens(i) != hydrogens[i] {
			m.Atoms[i].Bracket = true
			m.Atoms[i].HCount = hydrogens[i]
		}
	}
}

func huckel(electrons int) bool {
	return electrons >= 2 && (electrons-2)%4 == 0
}

// piElectrons returns the pi electrons ring atom i donates to a Kekulé ring
// and whether it can take part in one at all.
func (m *Molecule) piElectrons(i int, ringAtoms []bool) (int, bool) {
	a := m.Atoms[i]
	if a.Aromatic || a.Element == "*" {
		return 0, false
	}
	doubles := 0
	endocyclic := false
	for _, b := range m.adj[i] {
		switch m.Bonds[b].Order {
		case BondDouble:
			doubles++
			endocyclic = ringAtoms[m.other(b, i)]
		case BondSingle:
		default:
			return 0, false
		}
	}
	switch {
	case doubles > 1:
		return 0, false
	case doubles == 1 && endocyclic:
		return 1, true
	case doubles == 1:
		return 0, true
	}
	switch a.Element {
	case "C":
		switch a.Charge {
		case -1:
			return 2, true
		case 1:
			return 0, true
		}
	case "N", "P":
		if a.Charge == 0 && len(m.adj[i])+m.totalHydrogens(i) == 3 {
			return 2, true
		}
	case "O", "S", "Se", "Te":
		if a.Charge == 0 && len(m.adj[i]) == 2 {
			return 2, true
		}
	case "B":
		if a.Charge == 0 {
			return 0, true
		}
	}
	return 0, false
}

// smallestRings returns, for every ring bond, the shortest cycle through it.
// Duplicates are dropped. Each ring lists its atoms in path order.
func (m *Molecule) smallestRings(ringBonds []bool) [][]int {
	seen := make(map[string]bool)
	var rings [][]int
	for b, bond := range m.Bonds {
		if !ringBonds[b] {
			continue
		}
		path := m.shortestPath(bond.From, bond.To, b, ringBonds)
		if path == nil {
			continue
		}
		key := ringKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		rings = append(rings, path)
	}
	return rings
}

// shortestPath runs a BFS over ring bonds from src to dst without using bond
// skip.
func (m *Molecule) shortestPath(src, dst, skip int, ringBonds []bool) []int {
	prev := make([]int, len(m.Atoms))
	for i := range prev {
		prev[i] = -1
	}
	prev[src] = src
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			break
		}
		for _, b := range m.adj[u] {
			if b == skip || !ringBonds[b] {
				continue
			}
			v := m.other(b, u)
			if prev[v] >= 0 {
				continue
			}
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if prev[dst] < 0 {
		return nil
	}
	var path []int
	for v := dst; v != src; v = prev[v] {
		path = append(path, v)
	}
	path = append(path, src)
	slices.Reverse(path)
	return path
}

func ringKey(ring []int) string {
	sorted := slices.Sorted(slices.Values(ring))
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

// fusedUnion returns the atoms of two rings that share a bond, or nil.
func fusedUnion(a, b []int) []int {
	shared := 0
	for _, x := range a {
		if slices.Contains(b, x) {
			shared++
		}
	}
	if shared < 2 {
		return nil
	}
	union := slices.Clone(a)
	for _, x := range b {
		if !slices.Contains(a, x) {
			union = append(union, x)
		}
	}
	return union
}
