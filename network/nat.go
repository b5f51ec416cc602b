package network

// Packet is an (x, y) payload delivered to a node.
type Packet struct {
	X int64
	Y int64
}

// Nat is the gateway at NAT_ADDRESS. It remembers only the most recent
// packet sent to it, and tracks the packets it has used to wake the network.
type Nat struct {
	packet Packet
	valid  bool

	first      Packet
	firstValid bool

	wakes     int
	lastY     int64
	lastValid bool
}

// Store replaces the remembered packet.
func (nat *Nat) Store(packet Packet) {
	nat.packet = packet
	nat.valid = true

	if !nat.firstValid {
		nat.first = packet
		nat.firstValid = true
	}
}

// Load returns the remembered packet, if any.
func (nat *Nat) Load() (packet Packet, ok bool) {
	return nat.packet, nat.valid
}

// First returns the first packet ever sent to the gateway, if any.
func (nat *Nat) First() (packet Packet, ok bool) {
	return nat.first, nat.firstValid
}

// Wake records a packet used to wake the network. It returns true if the
// packet's Y matches that of the previous wake.
func (nat *Nat) Wake(packet Packet) (repeated bool) {
	repeated = nat.lastValid && nat.lastY == packet.Y
	nat.lastY = packet.Y
	nat.lastValid = true
	nat.wakes++
	return
}

// Wakes returns the number of times the gateway has woken the network.
func (nat *Nat) Wakes() int {
	return nat.wakes
}
