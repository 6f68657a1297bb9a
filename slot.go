package relay

import "fmt"

// SlotState is the state of a peripheral slot.
type SlotState int

const (
	SlotOpen SlotState = iota
	SlotConnecting
	SlotConnected
)

func (s SlotState) String() string {
	str := []string{
		"Open",
		"Connecting",
		"Connected",
	}
	if int(s) < 0 || int(s) >= len(str) {
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
	return str[int(s)]
}

// BindPolicy decides which slot a new connection is reserved into.
type BindPolicy int

const (
	// BindPeerAddress binds each peer address to a stable slot index.
	// The first time a peer connects its address takes the first free
	// entry of the bonded-peer list; later connections from the same
	// peer always land in that slot.
	BindPeerAddress BindPolicy = iota

	// BindFirstOpen reserves the first open slot, whatever the peer.
	BindFirstOpen
)

func (p BindPolicy) String() string {
	if p == BindFirstOpen {
		return "first-open"
	}
	return "peer-address"
}

// ParseBindPolicy parses the String form of a BindPolicy.
func ParseBindPolicy(s string) (BindPolicy, error) {
	switch s {
	case "peer-address", "":
		return BindPeerAddress, nil
	case "first-open":
		return BindFirstOpen, nil
	}
	return BindPeerAddress, fmt.Errorf("unknown bind policy %q", s)
}

// slot binds one connection to one logical peripheral.
// conn is non-nil iff state != SlotOpen.
type slot struct {
	state       SlotState
	conn        Conn
	cursor      *DiscoverParams // active discovery procedure, if any
	writeHandle uint16          // output-state value handle; 0 until discovered
}

// SlotInfo is a snapshot of a slot.
type SlotInfo struct {
	Index       int
	State       SlotState
	Peer        BDAddr
	Discovering bool
	WriteHandle uint16
}

// A SlotTable is a fixed-size table of peripheral slots.
// It is not safe for concurrent use; a Central confines it to its worker.
type SlotTable struct {
	slots  []slot
	peers  []BDAddr // bonded peer addresses, by slot index
	policy BindPolicy
}

// NewSlotTable returns a table of n open slots.
func NewSlotTable(n int, policy BindPolicy) *SlotTable {
	return &SlotTable{
		slots:  make([]slot, n),
		peers:  make([]BDAddr, n),
		policy: policy,
	}
}

// Len returns the number of slots in the table.
func (t *SlotTable) Len() int { return len(t.slots) }

// Lookup returns the index of the slot owning c.
func (t *SlotTable) Lookup(c Conn) (int, bool) {
	if c == nil {
		return -1, false
	}
	for i := range t.slots {
		if t.slots[i].conn == c {
			return i, true
		}
	}
	return -1, false
}

// Reserve puts c into an open slot and marks it connected.
// It returns ErrNoSlot if no slot can take c, and ErrSlotTaken if c
// already owns one.
func (t *SlotTable) Reserve(c Conn) (int, error) {
	if i, ok := t.Lookup(c); ok {
		return -1, fmt.Errorf("%s in slot %d: %w", c.RemoteAddr(), i, ErrSlotTaken)
	}
	switch t.policy {
	case BindFirstOpen:
		for i := range t.slots {
			if t.slots[i].state == SlotOpen {
				t.take(i, c)
				return i, nil
			}
		}
	default:
		i := t.putPeer(c.RemoteAddr())
		if i >= 0 && t.slots[i].state == SlotOpen {
			t.take(i, c)
			return i, nil
		}
	}
	return -1, ErrNoSlot
}

// take fully reinitializes slot i and hands it to c.
func (t *SlotTable) take(i int, c Conn) {
	t.slots[i] = slot{state: SlotConnected, conn: c}
}

// putPeer returns the bonded index of addr, bonding it to the first
// free entry if it is new. It returns -1 when the list is full.
func (t *SlotTable) putPeer(addr BDAddr) int {
	if len(addr.HardwareAddr) == 0 {
		return -1
	}
	free := -1
	for i, p := range t.peers {
		if p.Equal(addr) {
			return i
		}
		if free < 0 && len(p.HardwareAddr) == 0 {
			free = i
		}
	}
	if free >= 0 {
		t.peers[free] = BDAddr{append([]byte(nil), addr.HardwareAddr...)}
	}
	return free
}

// Unbond forgets the slot binding of addr.
func (t *SlotTable) Unbond(addr BDAddr) {
	for i, p := range t.peers {
		if p.Equal(addr) {
			t.peers[i] = BDAddr{}
		}
	}
}

// Release returns the slot owning c to the open state.
// It returns ErrNotFound if no slot owns c.
func (t *SlotTable) Release(c Conn) error {
	i, ok := t.Lookup(c)
	if !ok {
		return fmt.Errorf("release %v: %w", c, ErrNotFound)
	}
	return t.ReleaseIndex(i)
}

// ReleaseIndex returns slot i to the open state, clearing every trace
// of its previous connection. Releasing an open slot is an error.
func (t *SlotTable) ReleaseIndex(i int) error {
	if i < 0 || i >= len(t.slots) {
		return fmt.Errorf("slot %d: %w", i, ErrNotFound)
	}
	if t.slots[i].state == SlotOpen {
		return fmt.Errorf("slot %d: %w", i, ErrSlotOpen)
	}
	t.slots[i] = slot{}
	return nil
}

// Connected returns the number of connected slots.
func (t *SlotTable) Connected() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].state == SlotConnected {
			n++
		}
	}
	return n
}

// Info returns a snapshot of slot i.
// It returns ErrNotFound if i is out of range.
func (t *SlotTable) Info(i int) (SlotInfo, error) {
	if i < 0 || i >= len(t.slots) {
		return SlotInfo{}, fmt.Errorf("slot %d: %w", i, ErrNotFound)
	}
	return t.info(i), nil
}

func (t *SlotTable) info(i int) SlotInfo {
	s := t.slots[i]
	info := SlotInfo{
		Index:       i,
		State:       s.state,
		Discovering: s.cursor != nil,
		WriteHandle: s.writeHandle,
	}
	if s.conn != nil {
		info.Peer = s.conn.RemoteAddr()
	}
	return info
}

// Snapshot returns a snapshot of every slot.
func (t *SlotTable) Snapshot() []SlotInfo {
	ss := make([]SlotInfo, len(t.slots))
	for i := range t.slots {
		ss[i] = t.info(i)
	}
	return ss
}
