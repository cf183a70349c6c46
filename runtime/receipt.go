// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/json"

	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/thor"
)

// EventLog is a notification as recorded in a receipt.
type EventLog struct {
	Name string
	Data []byte
}

// Receipt is the outcome of one call.
type Receipt struct {
	CallID   thor.Bytes32
	Block    uint32
	Origin   thor.Address
	Reverted bool
	Reason   string
	Events   []*EventLog
}

// eventJournal collects events emitted while a block runs.
// Entries of a reverted call are truncated away.
type eventJournal struct {
	events []dpos.Event
}

func (j *eventJournal) Emit(ev dpos.Event) {
	j.events = append(j.events, ev)
}

func (j *eventJournal) Len() int {
	return len(j.events)
}

func (j *eventJournal) Truncate(n int) {
	j.events = j.events[:n]
}

// Since returns the events recorded after the first n.
func (j *eventJournal) Since(n int) ([]*EventLog, error) {
	logs := make([]*EventLog, 0, len(j.events)-n)
	for _, ev := range j.events[n:] {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &EventLog{Name: ev.EventName(), Data: data})
	}
	return logs, nil
}

type discardEvents struct{}

func (discardEvents) Emit(dpos.Event) {}
