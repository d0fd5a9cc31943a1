package chem

// BondOrder is the multiplicity of a bond as written in SMILES.
type BondOrder uint8

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	// BondAromatic marks a bond between two aromatic ring atoms.
	BondAromatic
)

// valence returns the contribution of the bond to an atom's valence. Aromatic
// bonds count as one; the extra pi electron is added per atom.
func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// Atom is a heavy atom (or explicit hydrogen) parsed from SMILES.
type Atom struct {
	Element  string // capitalised symbol, "*" for the wildcard
	Aromatic bool
	// Bracket reports whether the atom was written as [..]. Only bracket
	// atoms carry an explicit hydrogen count.
	Bracket bool
	Isotope int
	Charge  int
	HCount  int
	Chiral  string
	Class   int
}

// Bond connects two atoms by index.
type Bond struct {
	From, To int
	Order    BondOrder
}

// Molecule is an undirected molecular graph.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	adj [][]int // bond indices per atom
}

// NumAtoms returns the number of atoms in the graph.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds in the graph.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// Degree returns the number of explicit neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(from, to int, order BondOrder) int {
	m.Bonds = append(m.Bonds, Bond{From: from, To: to, Order: order})
	id := len(m.Bonds) - 1
	m.adj[from] = append(m.adj[from], id)
	m.adj[to] = append(m.adj[to], id)
	return id
}

func (m *Molecule) other(bond, atom int) int {
	b := m.Bonds[bond]
	if b.From == atom {
		return b.To
	}
	return b.From
}

func (m *Molecule) bonded(a, b int) bool {
	return m.bondBetween(a, b) >= 0
}

// bondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) bondBetween(a, b int) int {
	for _, id := range m.adj[a] {
		if m.other(id, a) == b {
			return id
		}
	}
	return -1
}

// ringBondMask flags every bond that lies on a cycle. Bridges of the graph
// (Tarjan) are exactly the acyclic bonds.
func (m *Molecule) ringBondMask() []bool {
	n := len(m.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	bridge := make([]bool, len(m.Bonds))
	clock := 0

	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		clock++
		disc[u] = clock
		low[u] = clock
		for _, b := range m.adj[u] {
			if b == parentBond {
				continue
			}
			v := m.other(b, u)
			if disc[v] == 0 {
				visit(v, b)
				low[u] = min(low[u], low[v])
				if low[v] > disc[u] {
					bridge[b] = true
				}
				continue
			}
			low[u] = min(low[u], disc[v])
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] == 0 {
			visit(i, -1)
		}
	}
	inRing := make([]bool, len(m.Bonds))
	for i := range inRing {
		inRing[i] = !bridge[i]
	}
	return inRing
}

func (m *Molecule) ringAtomMask(ringBonds []bool) []bool {
	atoms := make([]bool, len(m.Atoms))
	for i, b := range m.Bonds {
		if ringBonds[i] {
			atoms[b.From] = true
			atoms[b.To] = true
		}
	}
	return atoms
}

// impliedHydrogens is the hydrogen count an organic-subset atom written
// without brackets would carry given its current bonds.
func (m *Molecule) impliedHydrogens(i int) int {
	a := m.Atoms[i]
	if a.Aromatic && a.Element != "C" {
		return 0
	}
	valences := defaultValences[a.Element]
	if len(valences) == 0 {
		return 0
	}
	sum := 0
	for _, b := range m.adj[i] {
		sum += m.Bonds[b].Order.valence()
	}
	if a.Aromatic {
		sum++
	}
	for _, v := range valences {
		if v >= sum {
			return v - sum
		}
	}
	return 0
}

func (m *Molecule) totalHydrogens(i int) int {
	if m.Atoms[i].Bracket {
		return m.Atoms[i].HCount
	}
	return m.impliedHydrogens(i)
}

// needsBracket reports whether atom i must be written as a bracket atom to
// round-trip. Stereo and atom classes are never written.
func (m *Molecule) needsBracket(i int) bool {
	a := m.Atoms[i]
	if a.Isotope != 0 || a.Charge != 0 {
		return true
	}
	if a.Element == "*" {
		return a.Bracket && a.HCount != 0
	}
	if _, ok := defaultValences[a.Element]; !ok {
		return true
	}
	if a.Aromatic && !aromaticOrganic[a.Element] {
		return true
	}
	return a.Bracket && a.HCount != m.impliedHydrogens(i)
}
