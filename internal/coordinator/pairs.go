package coordinator

// pairTable is the bidirectional partner mapping, the single source of truth
// for "who is whose partner". Both directions are always installed and
// removed together, so the relation stays symmetric at every observable
// point. Owned by the hub's run loop; not safe for concurrent use.
type pairTable struct {
	partner map[string]string
}

func newPairTable() *pairTable {
	return &pairTable{partner: make(map[string]string)}
}

// pair installs the symmetric relation between a and b. It refuses
// self-pairing and refuses to overwrite an existing pairing on either side.
func (p *pairTable) pair(a, b string) bool {
	if a == b {
		return false
	}
	if _, ok := p.partner[a]; ok {
		return false
	}
	if _, ok := p.partner[b]; ok {
		return false
	}
	p.partner[a] = b
	p.partner[b] = a
	return true
}

// partnerOf resolves id to its current partner.
func (p *pairTable) partnerOf(id string) (string, bool) {
	other, ok := p.partner[id]
	return other, ok
}

// unpair removes the pairing id belongs to, both directions at once, and
// returns the former partner. Unpairing an unpaired id is a no-op, so a
// second call after a skip or a transport loss does no harm.
func (p *pairTable) unpair(id string) (string, bool) {
	other, ok := p.partner[id]
	if !ok {
		return "", false
	}
	delete(p.partner, id)
	delete(p.partner, other)
	return other, true
}

// count returns the number of active pairs.
func (p *pairTable) count() int {
	return len(p.partner) / 2
}
