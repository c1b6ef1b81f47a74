package gsd

import "sync"

// Participant is one member of a group of goroutines that write a
// trajectory together. Participant 0 is the writer. It implements
// Broadcaster.
type Participant struct {
	rank int
	in   chan uint64   //values from the writer, nil for the writer
	out  []chan uint64 //the in channels of the rest, only for the writer
	done *sync.Once
	quit chan struct{}
}

// NewLocalGroup returns size participants that share values through
// channels, to be used by goroutines of a single process.
func NewLocalGroup(size int) []*Participant {
	if size < 1 {
		size = 1
	}
	quit := make(chan struct{})
	once := new(sync.Once)
	ps := make([]*Participant, size)
	ps[0] = &Participant{rank: 0, done: once, quit: quit}
	for i := 1; i < size; i++ {
		ps[i] = &Participant{rank: i, in: make(chan uint64, 1), done: once, quit: quit}
		ps[0].out = append(ps[0].out, ps[i].in)
	}
	return ps
}

// Rank returns the position of p in its group.
func (p *Participant) Rank() int { return p.rank }

// IsWriter returns true for the participant that owns the file.
func (p *Participant) IsWriter() bool { return p.rank == 0 }

// BroadcastUint64 sends v to every other participant, if p is the writer,
// or waits for the value sent by the writer and returns it otherwise.
func (p *Participant) BroadcastUint64(v uint64) (uint64, error) {
	if p.rank == 0 {
		for _, c := range p.out {
			select {
			case c <- v:
			case <-p.quit:
				return 0, newError("", "BroadcastUint64", "participant group closed")
			}
		}
		return v, nil
	}
	select {
	case r := <-p.in:
		return r, nil
	case <-p.quit:
		return 0, newError("", "BroadcastUint64", "participant group closed")
	}
}

// Close releases every participant of the group blocked in BroadcastUint64.
// Closing the group more than once does nothing.
func (p *Participant) Close() {
	p.done.Do(func() { close(p.quit) })
}
