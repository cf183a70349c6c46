// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"encoding/json"

	"github.com/vechain/thor-dpos/runtime"
	"github.com/vechain/thor-dpos/thor"
)

// RawCall is a signed call in rlp, hex encoded.
type RawCall struct {
	Raw string `json:"raw"`
}

type SendResult struct {
	ID     thor.Bytes32 `json:"id"`
	Origin thor.Address `json:"origin"`
}

type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type Receipt struct {
	CallID   thor.Bytes32 `json:"callID"`
	Block    uint32       `json:"block"`
	Origin   thor.Address `json:"origin"`
	Reverted bool         `json:"reverted"`
	Reason   string       `json:"reason,omitempty"`
	Events   []*Event     `json:"events"`
}

func convertReceipt(r *runtime.Receipt) *Receipt {
	events := make([]*Event, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, &Event{Name: ev.Name, Data: json.RawMessage(ev.Data)})
	}
	return &Receipt{
		CallID:   r.CallID,
		Block:    r.Block,
		Origin:   r.Origin,
		Reverted: r.Reverted,
		Reason:   r.Reason,
		Events:   events,
	}
}
