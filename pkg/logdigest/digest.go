// Package logdigest encodes the log digest stored in a master's head segment.
//
// A digest lists every segment id that composed the log when the head segment
// was opened. It is encoded as a protobuf message with a single packed
// repeated uint64 field so that older readers skip fields they don't know.
package logdigest

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const segmentIDsField protowire.Number = 1

var ErrMalformedDigest = errors.New("malformed log digest")

// Encode serializes segment ids in the given order.
func Encode(segmentIDs []uint64) []byte {
	var packed []byte
	for _, id := range segmentIDs {
		packed = protowire.AppendVarint(packed, id)
	}

	b := make([]byte, 0, len(packed)+4)
	b = protowire.AppendTag(b, segmentIDsField, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// Decode returns the segment ids declared by a digest payload.
// Both packed and unpacked encodings of the id field are accepted.
func Decode(payload []byte) ([]uint64, error) {
	ids := make([]uint64, 0)
	b := payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, protowire.ParseError(n))
		}
		b = b[n:]

		if num != segmentIDsField {
			skip := protowire.ConsumeFieldValue(num, typ, b)
			if skip < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, protowire.ParseError(skip))
			}
			b = b[skip:]
			continue
		}

		switch typ {
		case protowire.BytesType:
			packed, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, protowire.ParseError(m))
			}
			b = b[m:]
			for len(packed) > 0 {
				id, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, protowire.ParseError(k))
				}
				ids = append(ids, id)
				packed = packed[k:]
			}
		case protowire.VarintType:
			id, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedDigest, protowire.ParseError(m))
			}
			ids = append(ids, id)
			b = b[m:]
		default:
			return nil, fmt.Errorf("%w: unexpected wire type %d for segment ids", ErrMalformedDigest, typ)
		}
	}
	return ids, nil
}
