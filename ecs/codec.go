package ecs

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Stream layout, per live entity in ascending index order:
//
//	'{' index:u16 generation:u16 (name NUL payload)* '}'
//
// Integers are little-endian. Payload length is known only to the component.
const (
	frameStart     = '{'
	frameEnd       = '}'
	nameTerminator = 0

	// StreamTerminator ends a load early when it appears where an entity frame
	// would start. Serialize never writes it; callers embedding a stream in a
	// larger file may append it.
	StreamTerminator = '0'
)

var byteOrder = binary.LittleEndian

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Serialize writes every live entity and its components to w.
func (s *Store) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)

	entities := 0
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.occupied {
			continue
		}

		bw.WriteByte(frameStart)
		binary.Write(bw, byteOrder, uint16(i))
		binary.Write(bw, byteOrder, sl.generation)

		for _, c := range sl.components {
			bw.WriteString(c.ComponentName())
			bw.WriteByte(nameTerminator)
			if err := c.Serialize(bw); err != nil {
				return fmt.Errorf("serialize %s on entity %s: %w",
					c.ComponentName(), NewHandle(uint16(i), sl.generation), err)
			}
		}

		bw.WriteByte(frameEnd)
		entities++
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}

	s.log.Debug("store serialized", zap.Int("entities", entities))
	return nil
}

// Deserialize replaces the store's entities with the ones read from r,
// reproducing every index:generation pair and the free slots between them.
// Systems are not part of the stream and are left untouched.
//
// Component payloads are read from the same buffered reader, so r is consumed
// past the last frame when it does not implement io.ByteReader. On error the
// store is left partially loaded and should be discarded.
func (s *Store) Deserialize(r io.Reader) error {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	s.reset()

	next := 0
	entities := 0
	for {
		token, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("deserialize store: %w", err)
		}

		if token == StreamTerminator {
			break
		}
		if token != frameStart {
			return fmt.Errorf("%w: unexpected byte %q before entity frame", ErrCorruptStream, token)
		}

		if err := s.readEntity(br, &next); err != nil {
			return err
		}
		entities++
	}

	s.log.Debug("store deserialized",
		zap.Int("entities", entities),
		zap.Int("slots", len(s.slots)),
		zap.Int("free", len(s.freeList)))
	return nil
}

// readEntity reads one frame after its start marker. next is the lowest index
// not yet covered by the slot table.
func (s *Store) readEntity(br byteReader, next *int) error {
	var index, generation uint16
	if err := binary.Read(br, byteOrder, &index); err != nil {
		return corrupt("entity index", err)
	}
	if err := binary.Read(br, byteOrder, &generation); err != nil {
		return corrupt("entity generation", err)
	}
	if int(index) < *next {
		return fmt.Errorf("%w: entity index %d out of order", ErrCorruptStream, index)
	}

	// Indices skipped since the previous frame were free at save time.
	for i := *next; i < int(index); i++ {
		s.freeList = append(s.freeList, uint16(i))
	}
	for len(s.slots) <= int(index) {
		s.slots = append(s.slots, slot{})
	}
	*next = int(index) + 1

	sl := &s.slots[index]
	sl.generation = generation
	sl.occupied = true
	h := NewHandle(index, generation)

	var name []byte
	for {
		token, err := br.ReadByte()
		if err != nil {
			return corrupt(fmt.Sprintf("entity %s", h), err)
		}

		switch token {
		case frameEnd:
			if len(name) > 0 {
				return fmt.Errorf("%w: entity %s: unterminated component name %q", ErrCorruptStream, h, name)
			}
			s.resolve(h)
			return nil

		case nameTerminator:
			c, err := s.registry.create(string(name))
			if err != nil {
				return fmt.Errorf("deserialize entity %s: %w", h, err)
			}
			if err := c.Deserialize(br); err != nil {
				return corrupt(fmt.Sprintf("%s on entity %s", name, h), err)
			}
			if err := s.attach(h, c); err != nil {
				return fmt.Errorf("deserialize entity %s: %w", h, err)
			}
			name = name[:0]

		default:
			name = append(name, token)
		}
	}
}

func corrupt(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrCorruptStream, what, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("deserialize %s: %w", what, err)
}
