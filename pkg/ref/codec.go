package ref

import (
	"encoding/json"

	"github.com/kvforge/llrbkv/pkg/store"
)

// nodeRecord is the on-disk shape of a Node block: addresses of its
// children and value rather than the lazy refs themselves, following the
// same marshal-a-plain-record approach the rest of the corpus uses for
// persisted objects.
//
// Key is []byte rather than string: encoding/json marshals a Go string
// field as UTF-8 text, replacing any invalid UTF-8 byte sequence with
// U+FFFD, which would silently corrupt arbitrary-byte keys on encode.
// A []byte field is instead base64-encoded by encoding/json, which
// round-trips any byte sequence.
type nodeRecord struct {
	Left  store.Address `json:"left"`
	Key   []byte        `json:"key"`
	Value store.Address `json:"value"`
	Right store.Address `json:"right"`
	Color bool          `json:"color"`
}

func encodeNode(n *Node) ([]byte, error) {
	rec := nodeRecord{
		Left:  n.Left.Address(),
		Key:   []byte(n.Key),
		Value: n.Value.Address(),
		Right: n.Right.Address(),
		Color: bool(n.Color),
	}
	return json.Marshal(rec)
}

func decodeNode(payload []byte) (*Node, error) {
	var rec nodeRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}

	left := NilRef()
	if rec.Left != 0 {
		left = NewPersistedNodeRef(rec.Left)
	}
	right := NilRef()
	if rec.Right != 0 {
		right = NewPersistedNodeRef(rec.Right)
	}

	return &Node{
		Left:  left,
		Key:   string(rec.Key),
		Value: NewPersistedValueRef(rec.Value),
		Right: right,
		Color: Color(rec.Color),
	}, nil
}
