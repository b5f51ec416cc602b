// Package network simulates Intcode processors exchanging packets over
// addressed queues, with a NAT gateway that wakes the network when it idles.
package network

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/intcode/cpu"
)

const (
	DEFAULT_SIZE = 50  // Default number of nodes.
	NAT_ADDRESS  = 255 // Address of the NAT gateway.
	NO_PACKET    = -1  // Input given to a node with an empty queue.
	IDLE_ROUNDS  = 2   // Consecutive quiet rounds for a node to be idle.
)

// Packet kind labels of the Packets metric.
const (
	KIND_NODE = "node"
	KIND_NAT  = "nat"
	KIND_WAKE = "wake"
)

// node is a single addressed processor.
type node struct {
	*cpu.Cpu
	address int64
	queue   cpu.Queue
	partial []int64 // Output not yet forming a whole packet.
	quiet   int     // Consecutive quiet rounds.

	outputs []int64 // Output of the current round.
	empty   bool    // Set if the queue was empty at the start of the round.
}

// Network is a set of nodes, addressed from 0, plus the NAT gateway.
type Network struct {
	Verbose  bool     // If set, enables verbose logging.
	Parallel bool     // If set, the nodes of a round are run concurrently.
	Metrics  *Metrics // If set, updated as the network runs.

	MaxRounds int // If non-zero, the most rounds before ErrRoundLimit.

	Nat    Nat // NAT gateway.
	Rounds int // Rounds run.

	nodes []*node
}

// NewNetwork creates a network of size copies of a program, each primed
// with its address. A size of 0 is DEFAULT_SIZE.
func NewNetwork(prog *cpu.Program, size int) (net *Network, err error) {
	if size == 0 {
		size = DEFAULT_SIZE
	}
	if size < 0 || size > NAT_ADDRESS {
		err = ErrNetworkSize
		return
	}

	boot := cpu.NewCpu(prog)

	net = &Network{
		nodes: make([]*node, size),
	}
	for n := range size {
		nd := &node{
			Cpu:     boot.Clone(),
			address: int64(n),
		}
		nd.queue.Push(nd.address)
		net.nodes[n] = nd
	}

	return
}

// Size returns the number of nodes.
func (net *Network) Size() int {
	return len(net.nodes)
}

// SetMaxTicks sets the per round tick limit of every node.
func (net *Network) SetMaxTicks(ticks int) {
	for _, nd := range net.nodes {
		nd.MaxTicks = ticks
	}
}

// Pending returns the number of values queued for a node.
func (net *Network) Pending(address int64) int {
	if address < 0 || address >= int64(len(net.nodes)) {
		return 0
	}
	return net.nodes[address].queue.Len()
}

// Idle returns true if every node has been quiet for IDLE_ROUNDS rounds.
func (net *Network) Idle() bool {
	for _, nd := range net.nodes {
		if nd.quiet < IDLE_ROUNDS {
			return false
		}
	}
	return true
}

// step runs a single node for the round.
func (nd *node) step() (err error) {
	nd.outputs = nil
	nd.empty = nd.queue.Empty()

	if nd.Halted() {
		return
	}

	if nd.empty {
		nd.queue.Push(NO_PACKET)
	}

	nd.outputs, _, err = nd.RunQueue(&nd.queue)
	if err != nil {
		err = &ErrNode{Address: nd.address, Err: err}
		return
	}

	return
}

// run runs every node for the round.
func (net *Network) run(ctx context.Context) (err error) {
	if !net.Parallel {
		for _, nd := range net.nodes {
			err = nd.step()
			if err != nil {
				return
			}
		}
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, nd := range net.nodes {
		g.Go(func() (err error) {
			err = ctx.Err()
			if err != nil {
				return
			}
			return nd.step()
		})
	}

	err = g.Wait()

	return
}

// deliver routes a packet from a node.
func (net *Network) deliver(source int64, dest int64, packet Packet) (err error) {
	var kind string

	switch {
	case dest == NAT_ADDRESS:
		net.Nat.Store(packet)
		kind = KIND_NAT
	case dest >= 0 && dest < int64(len(net.nodes)):
		net.nodes[dest].queue.Push(packet.X, packet.Y)
		kind = KIND_NODE
	default:
		err = ErrAddressUnknown{Source: source, Address: dest}
		return
	}

	if net.Verbose {
		log.Printf("round %d: %d -> %d: %v", net.Rounds, source, dest, packet)
	}

	if net.Metrics != nil {
		net.Metrics.Packets.WithLabelValues(kind).Inc()
	}

	return
}

// route delivers the round's output of every node, in address order.
func (net *Network) route() (err error) {
	for _, nd := range net.nodes {
		if nd.empty && len(nd.outputs) == 0 {
			nd.quiet++
		} else {
			nd.quiet = 0
		}

		nd.partial = append(nd.partial, nd.outputs...)
		for len(nd.partial) >= 3 {
			dest := nd.partial[0]
			packet := Packet{X: nd.partial[1], Y: nd.partial[2]}
			nd.partial = nd.partial[3:]
			err = net.deliver(nd.address, dest, packet)
			if err != nil {
				return
			}
		}
		if len(nd.partial) == 0 {
			nd.partial = nil
		}
	}

	return
}

// Round runs every node once, then routes their packets. When the network
// is idle, the NAT gateway wakes node 0 with its remembered packet.
//
// done is set when the gateway wakes the network with the same Y value
// twice in a row, and y is that value.
func (net *Network) Round(ctx context.Context) (y int64, done bool, err error) {
	err = net.run(ctx)
	if err != nil {
		return
	}

	err = net.route()
	if err != nil {
		return
	}

	net.Rounds++

	idle := 0
	for _, nd := range net.nodes {
		if nd.quiet >= IDLE_ROUNDS {
			idle++
		}
	}

	if net.Metrics != nil {
		net.Metrics.Rounds.Inc()
		net.Metrics.Idle.Set(float64(idle))
	}

	if idle != len(net.nodes) {
		return
	}

	packet, ok := net.Nat.Load()
	if !ok {
		return
	}

	if net.Verbose {
		log.Printf("round %d: idle, nat wakes 0 with %v", net.Rounds, packet)
	}

	net.nodes[0].queue.Push(packet.X, packet.Y)
	if net.Metrics != nil {
		net.Metrics.Wakes.Inc()
		net.Metrics.Packets.WithLabelValues(KIND_WAKE).Inc()
	}

	if net.Nat.Wake(packet) {
		y = packet.Y
		done = true
	}

	return
}

// Run runs rounds until the NAT gateway wakes the network with the same
// Y value twice in a row, and returns that value.
func (net *Network) Run(ctx context.Context) (y int64, err error) {
	for {
		err = net.check(ctx)
		if err != nil {
			return
		}

		var done bool
		y, done, err = net.Round(ctx)
		if err != nil || done {
			return
		}
	}
}

// FirstNatPacket runs rounds until a packet has been sent to the NAT
// gateway, and returns the first such packet.
func (net *Network) FirstNatPacket(ctx context.Context) (packet Packet, err error) {
	for {
		var ok bool
		packet, ok = net.Nat.First()
		if ok {
			return
		}

		err = net.check(ctx)
		if err != nil {
			return
		}

		_, _, err = net.Round(ctx)
		if err != nil {
			return
		}
	}
}

// check returns an error if no further rounds may be run.
func (net *Network) check(ctx context.Context) (err error) {
	err = ctx.Err()
	if err != nil {
		return
	}

	if net.MaxRounds > 0 && net.Rounds >= net.MaxRounds {
		err = ErrRoundLimit
		return
	}

	return
}
