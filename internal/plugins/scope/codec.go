// SPDX-License-Identifier: MPL-2.0

package scope

import (
	"github.com/fxamacker/cbor/v2"
)

// snapshotVersion is bumped when the on-disk layout changes.
const snapshotVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

// snapshot is the persisted file: patterns granted at runtime, in the
// order they were added.
type snapshot struct {
	Version   int      `cbor:"1,keyasint"`
	Allowed   []string `cbor:"2,keyasint,omitempty"`
	Forbidden []string `cbor:"3,keyasint,omitempty"`
}

func init() {
	var err error

	// Core deterministic encoding: same scope, same bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("scope: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 16,
	}.DecMode()
	if err != nil {
		panic("scope: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeSnapshot(s snapshot) ([]byte, error) {
	s.Version = snapshotVersion
	return encMode.Marshal(s)
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var s snapshot
	err := decMode.Unmarshal(data, &s)
	return s, err
}
