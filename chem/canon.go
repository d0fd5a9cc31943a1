package chem

import (
	"slices"
	"strconv"
	"strings"
)

// CanonicalSMILES writes m as a canonical, non-isomeric SMILES string. Two
// graphs that differ only in atom order produce the same string. An empty
// molecule yields "".
func CanonicalSMILES(m *Molecule) string {
	if m == nil || len(m.Atoms) == 0 {
		return ""
	}
	w := &smilesWriter{
		m:        m,
		rank:     canonicalRanks(m),
		visited:  make([]bool, len(m.Atoms)),
		tree:     make([]bool, len(m.Bonds)),
		closure:  make([]bool, len(m.Bonds)),
		children: make([][]int, len(m.Atoms)),
		rings:    make([][]int, len(m.Atoms)),
		digits:   make(map[int]int),
	}
	return w.write()
}

// ScaffoldSMILES parses smiles and returns the canonical SMILES of its Murcko
// scaffold.
func ScaffoldSMILES(smiles string) (string, error) {
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return "", err
	}
	return CanonicalSMILES(MurckoScaffold(mol)), nil
}

// Canonicalize parses smiles and writes it back in canonical form.
func Canonicalize(smiles string) (string, error) {
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return "", err
	}
	return CanonicalSMILES(mol), nil
}

// canonicalRanks assigns every atom a distinct rank that depends only on the
// graph, not on input order. Ranks start from atom invariants, are refined by
// neighbourhood until stable, and remaining ties are broken one class at a
// time.
func canonicalRanks(m *Molecule) []int {
	ringAtoms := m.ringAtomMask(m.ringBondMask())
	keys := make([][]int, len(m.Atoms))
	for i, a := range m.Atoms {
		aromatic, ring := 0, 0
		if a.Aromatic {
			aromatic = 1
		}
		if ringAtoms[i] {
			ring = 1
		}
		keys[i] = []int{
			len(m.adj[i]),
			atomicNumbers[a.Element],
			aromatic,
			a.Isotope,
			a.Charge,
			m.totalHydrogens(i),
			ring,
		}
	}
	ranks := refineRanks(m, denseRanks(keys))
	for {
		tied := lowestTiedRank(ranks)
		if tied < 0 {
			return ranks
		}
		chosen := slices.Index(ranks, tied)
		broken := make([][]int, len(ranks))
		for i, r := range ranks {
			r *= 2
			if r == tied*2 && i != chosen {
				r++
			}
			broken[i] = []int{r}
		}
		ranks = refineRanks(m, denseRanks(broken))
	}
}

func refineRanks(m *Molecule, ranks []int) []int {
	classes := countClasses(ranks)
	for {
		keys := make([][]int, len(ranks))
		for i := range ranks {
			nbrs := make([]int, 0, len(m.adj[i]))
			for _, b := range m.adj[i] {
				nbrs = append(nbrs, ranks[m.other(b, i)]*8+int(m.Bonds[b].Order))
			}
			slices.Sort(nbrs)
			keys[i] = append([]int{ranks[i]}, nbrs...)
		}
		next := denseRanks(keys)
		nextClasses := countClasses(next)
		if nextClasses == classes {
			return next
		}
		ranks, classes = next, nextClasses
	}
}

// denseRanks maps each key to its position among the distinct sorted keys.
func denseRanks(keys [][]int) []int {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return slices.Compare(keys[a], keys[b])
	})
	ranks := make([]int, len(keys))
	rank := 0
	for i, idx := range order {
		if i > 0 && slices.Compare(keys[order[i-1]], keys[idx]) != 0 {
			rank++
		}
		ranks[idx] = rank
	}
	return ranks
}

func countClasses(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func lowestTiedRank(ranks []int) int {
	counts := make(map[int]int, len(ranks))
	for _, r := range ranks {
		counts[r]++
	}
	for r := 0; r < len(ranks); r++ {
		if counts[r] > 1 {
			return r
		}
	}
	return -1
}

type smilesWriter struct {
	m        *Molecule
	rank     []int
	visited  []bool
	tree     []bool
	closure  []bool
	children [][]int // tree bonds to children, in write order
	rings    [][]int // ring-closure bonds touching the atom, in discovery order
	digits   map[int]int
	sb       strings.Builder
}

func (w *smilesWriter) write() string {
	order := make([]int, len(w.m.Atoms))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return w.rank[a] - w.rank[b] })
	first := true
	for _, root := range order {
		if w.visited[root] {
			continue
		}
		w.plan(root, -1)
		if !first {
			w.sb.WriteByte('.')
		}
		first = false
		w.emit(root)
	}
	return w.sb.String()
}

// plan fixes the spanning tree and ring closures of one fragment.
func (w *smilesWriter) plan(u, parentBond int) {
	w.visited[u] = true
	bonds := slices.Clone(w.m.adj[u])
	slices.SortFunc(bonds, func(a, b int) int {
		return w.rank[w.m.other(a, u)] - w.rank[w.m.other(b, u)]
	})
	for _, b := range bonds {
		if b == parentBond || w.closure[b] {
			continue
		}
		v := w.m.other(b, u)
		if w.visited[v] {
			w.closure[b] = true
			w.rings[v] = append(w.rings[v], b)
			w.rings[u] = append(w.rings[u], b)
			continue
		}
		w.tree[b] = true
		w.children[u] = append(w.children[u], b)
		w.plan(v, b)
	}
}

func (w *smilesWriter) emit(u int) {
	w.sb.WriteString(w.atomSymbol(u))
	var release []int
	for _, b := range w.rings[u] {
		if d, ok := w.digits[b]; ok {
			w.sb.WriteString(ringDigit(d))
			release = append(release, b)
			continue
		}
		d := w.freeDigit()
		w.digits[b] = d
		w.sb.WriteString(w.bondSymbol(b))
		w.sb.WriteString(ringDigit(d))
	}
	for _, b := range release {
		delete(w.digits, b)
	}
	for i, b := range w.children[u] {
		last := i == len(w.children[u])-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondSymbol(b))
		w.emit(w.m.other(b, u))
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func (w *smilesWriter) freeDigit() int {
	used := make(map[int]bool, len(w.digits))
	for _, d := range w.digits {
		used[d] = true
	}
	d := 1
	for used[d] {
		d++
	}
	return d
}

func ringDigit(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondSymbol(b int) string {
	bond := w.m.Bonds[b]
	bothAromatic := w.m.Atoms[bond.From].Aromatic && w.m.Atoms[bond.To].Aromatic
	switch bond.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

func (w *smilesWriter) atomSymbol(i int) string {
	a := w.m.Atoms[i]
	symbol := a.Element
	if a.Aromatic {
		symbol = strings.ToLower(symbol)
	}
	if !w.m.needsBracket(i) {
		return symbol
	}
	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(symbol)
	if h := w.m.totalHydrogens(i); h > 0 {
		sb.WriteByte('H')
		if h > 1 {
			sb.WriteString(strconv.Itoa(h))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	sb.WriteByte(']')
	return sb.String()
}
