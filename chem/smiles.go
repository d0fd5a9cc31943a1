package chem

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidSMILES marks every parse failure returned by ParseSMILES.
var ErrInvalidSMILES = errors.New("invalid SMILES")

type ringOpening struct {
	atom  int
	order BondOrder
}

type parser struct {
	s        string
	pos      int
	mol      *Molecule
	prev     int
	bond     BondOrder
	branches []int
	rings    map[int]ringOpening
}

// ParseSMILES reads a SMILES string into a molecular graph. Anything after the
// first whitespace (a title field) is ignored. Directional bonds are read as
// single bonds and aromatic bonds that are not part of a ring are demoted to
// single bonds. Aromatic atoms outside rings are rejected. Kekulé rings that
// satisfy the 4n+2 rule are converted to aromatic form.
func ParseSMILES(s string) (*Molecule, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, errors.Wrap(ErrInvalidSMILES, "empty string")
	}
	p := &parser{
		s:     s,
		mol:   &Molecule{},
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) fail(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidSMILES, "%s at position %d in %q", fmt.Sprintf(format, args...), p.pos, p.s)
}

func (p *parser) run() error {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			if p.bond != 0 {
				return p.fail("bond before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.bond != 0 {
				return p.fail("dangling bond")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.bond != 0 {
				return p.fail("dangling bond")
			}
			p.prev = -1
			p.pos++
		case isBondChar(c):
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			if p.bond != 0 {
				return p.fail("consecutive bond symbols")
			}
			p.bond = bondOrderFor(c)
			p.pos++
		case c == '%' || (c >= '0' && c <= '9'):
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			p.attach(atom)
		default:
			atom, ok := p.organicAtom()
			if !ok {
				return p.fail("unexpected character %q", c)
			}
			p.attach(atom)
		}
	}
	return nil
}

func (p *parser) finish() error {
	if len(p.branches) > 0 {
		return p.fail("unclosed branch")
	}
	if p.bond != 0 {
		return p.fail("dangling bond")
	}
	if len(p.rings) > 0 {
		open := make([]int, 0, len(p.rings))
		for n := range p.rings {
			open = append(open, n)
		}
		return p.fail("unclosed ring %d", slices.Min(open))
	}
	if len(p.mol.Atoms) == 0 {
		return p.fail("no atoms")
	}
	ring := p.mol.ringBondMask()
	ringAtoms := p.mol.ringAtomMask(ring)
	for i, a := range p.mol.Atoms {
		if a.Aromatic && !ringAtoms[i] {
			return errors.Wrapf(ErrInvalidSMILES, "aromatic atom %d (%s) outside a ring in %q", i+1, a.Element, p.s)
		}
	}
	for i := range p.mol.Bonds {
		if p.mol.Bonds[i].Order == BondAromatic && !ring[i] {
			p.mol.Bonds[i].Order = BondSingle
		}
	}
	p.mol.perceiveAromaticity()
	return nil
}

func (p *parser) attach(a Atom) {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		order := p.bond
		if order == 0 {
			order = p.defaultOrder(p.prev, idx)
		}
		p.mol.addBond(p.prev, idx, order)
	}
	p.bond = 0
	p.prev = idx
}

func (p *parser) defaultOrder(a, b int) BondOrder {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *parser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
	var n int
	if p.s[p.pos] == '%' {
		if p.pos+2 >= len(p.s) || !isDigit(p.s[p.pos+1]) || !isDigit(p.s[p.pos+2]) {
			return p.fail("malformed ring number")
		}
		n = int(p.s[p.pos+1]-'0')*10 + int(p.s[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.s[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpening{atom: p.prev, order: p.bond}
		p.bond = 0
		return nil
	}
	order := p.bond
	if open.order != 0 && order != 0 && open.order != order {
		return p.fail("conflicting bond orders on ring %d", n)
	}
	if order == 0 {
		order = open.order
	}
	if open.atom == p.prev {
		return p.fail("ring %d closes on its own atom", n)
	}
	if p.mol.bonded(open.atom, p.prev) {
		return p.fail("ring %d duplicates an existing bond", n)
	}
	if order == 0 {
		order = p.defaultOrder(open.atom, p.prev)
	}
	p.mol.addBond(open.atom, p.prev, order)
	delete(p.rings, n)
	p.bond = 0
	return nil
}

func (p *parser) organicAtom() (Atom, bool) {
	c := p.s[p.pos]
	next := byte(0)
	if p.pos+1 < len(p.s) {
		next = p.s[p.pos+1]
	}
	switch c {
	case 'C':
		if next == 'l' {
			p.pos += 2
			return Atom{Element: "Cl"}, true
		}
		p.pos++
		return Atom{Element: "C"}, true
	case 'B':
		if next == 'r' {
			p.pos += 2
			return Atom{Element: "Br"}, true
		}
		p.pos++
		return Atom{Element: "B"}, true
	case 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return Atom{Element: string(c)}, true
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		return Atom{Element: strings.ToUpper(string(c)), Aromatic: true}, true
	case '*':
		p.pos++
		return Atom{Element: "*"}, true
	}
	return Atom{}, false
}

func (p *parser) bracketAtom() (Atom, error) {
	start := p.pos
	p.pos++ // '['
	atom := Atom{Bracket: true}

	atom.Isotope = p.number()

	switch c := p.peek(); {
	case c == '*':
		atom.Element = "*"
		p.pos++
	case c >= 'A' && c <= 'Z':
		sym := string(c)
		if n := p.peekAt(1); n >= 'a' && n <= 'z' {
			if _, ok := atomicNumbers[sym+string(n)]; ok {
				sym += string(n)
			}
		}
		if _, ok := atomicNumbers[sym]; !ok {
			return atom, p.fail("unknown element %q", sym)
		}
		atom.Element = sym
		p.pos += len(sym)
	case c >= 'a' && c <= 'z':
		two := ""
		if p.pos+2 <= len(p.s) {
			two = p.s[p.pos : p.pos+2]
		}
		if el, ok := aromaticBracket[two]; ok {
			atom.Element = el
			p.pos += 2
		} else if el, ok := aromaticBracket[string(c)]; ok {
			atom.Element = el
			p.pos++
		} else {
			return atom, p.fail("unknown aromatic element %q", c)
		}
		atom.Aromatic = true
	default:
		return atom, p.fail("missing element symbol")
	}

	if p.peek() == '@' {
		from := p.pos
		p.pos++
		if p.peek() == '@' {
			p.pos++
		} else if p.pos+2 <= len(p.s) {
			switch p.s[p.pos : p.pos+2] {
			case "TH", "AL", "SP", "TB", "OH":
				p.pos += 2
				p.number()
			}
		}
		atom.Chiral = p.s[from:p.pos]
	}

	if p.peek() == 'H' {
		p.pos++
		atom.HCount = 1
		if isDigit(p.peek()) {
			atom.HCount = int(p.peek() - '0')
			p.pos++
		}
	}

	if c := p.peek(); c == '+' || c == '-' {
		sign := 1
		if c == '-' {
			sign = -1
		}
		p.pos++
		magnitude := 1
		if isDigit(p.peek()) {
			magnitude = p.number()
		} else {
			for p.peek() == c {
				magnitude++
				p.pos++
			}
		}
		atom.Charge = sign * magnitude
	}

	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return atom, p.fail("malformed atom class")
		}
		atom.Class = p.number()
	}

	if p.peek() != ']' {
		if p.pos >= len(p.s) {
			p.pos = start
			return atom, p.fail("unclosed bracket atom")
		}
		return atom, p.fail("unexpected %q in bracket atom", p.peek())
	}
	p.pos++
	return atom, nil
}

func (p *parser) number() int {
	n := 0
	for isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		p.pos++
	}
	return n
}

func (p *parser) peek() byte { return p.peekAt(0) }

func (p *parser) peekAt(off int) byte {
	if p.pos+off < len(p.s) {
		return p.s[p.pos+off]
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isBondChar(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondOrderFor(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}
