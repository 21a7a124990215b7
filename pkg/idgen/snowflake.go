package idgen

import (
	"errors"
	"sync"
	"time"
)

const (
	// 64-bit layout:
	// 1 bit: unused
	// 41 bits: milliseconds since Epoch
	// 10 bits: coordinator ID
	// 12 bits: sequence

	nodeBits     = 10
	sequenceBits = 12

	maxNodeID   = -1 ^ (-1 << nodeBits)
	maxSequence = -1 ^ (-1 << sequenceBits)

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits

	// Epoch is 2025-01-01 00:00:00 UTC in milliseconds.
	Epoch = 1735689600000
)

var (
	ErrNodeIDTooLarge = errors.New("node ID too large")
	ErrClockMovedBack = errors.New("clock moved backwards")
)

// Snowflake generates unique, time-ordered 64-bit recovery IDs.
type Snowflake struct {
	mu       sync.Mutex
	clock    Clock
	nodeID   int64
	lastTime int64
	sequence int64
}

// ID is a decoded snowflake.
type ID struct {
	Time     time.Time
	NodeID   int64
	Sequence int64
}

// New creates a new Snowflake ID generator.
func New(nodeID int64, clock Clock) (*Snowflake, error) {
	if nodeID < 0 || nodeID > int64(maxNodeID) {
		return nil, ErrNodeIDTooLarge
	}

	if clock == nil {
		clock = &SystemClock{}
	}

	return &Snowflake{
		clock:    clock,
		nodeID:   nodeID,
		lastTime: -1,
	}, nil
}

// Next generates the next unique ID.
func (s *Snowflake) Next() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if now < s.lastTime {
		return 0, ErrClockMovedBack
	}

	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & int64(maxSequence)
		if s.sequence == 0 {
			// Sequence exhausted, wait for next millisecond
			for now <= s.lastTime {
				now = s.clock.Now()
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastTime = now

	id := ((now - Epoch) << timestampShift) |
		(s.nodeID << nodeShift) |
		s.sequence

	return uint64(id), nil
}

// Parse splits id back into its components.
func Parse(id uint64) ID {
	v := int64(id)
	return ID{
		Time:     time.UnixMilli((v >> timestampShift) + Epoch).UTC(),
		NodeID:   (v >> nodeShift) & int64(maxNodeID),
		Sequence: v & int64(maxSequence),
	}
}
