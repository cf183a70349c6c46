// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/thor-dpos/api/utils"
	"github.com/vechain/thor-dpos/runtime"
	"github.com/vechain/thor-dpos/thor"
)

type JSONBlock struct {
	Number             uint32       `json:"number"`
	ChangesHash        thor.Bytes32 `json:"changesHash"`
	Timestamp          uint64       `json:"timestamp"`
	Calls              uint32       `json:"calls"`
	Reverted           uint32       `json:"reverted"`
	AuthoritiesUpdated bool         `json:"authoritiesUpdated"`
}

func convertBlock(b *runtime.Block) *JSONBlock {
	return &JSONBlock{
		Number:             b.Number,
		ChangesHash:        b.ChangesHash,
		Timestamp:          b.Timestamp,
		Calls:              b.Calls,
		Reverted:           b.Reverted,
		AuthoritiesUpdated: b.AuthoritiesUpdated,
	}
}

type Blocks struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Blocks {
	return &Blocks{rt}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	n, err := utils.ParseBlockNumber(mux.Vars(req)["revision"], b.rt.BestBlock())
	if err != nil {
		return err
	}
	block, err := b.rt.GetBlock(n)
	if err != nil {
		return err
	}
	if block == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, convertBlock(block))
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("blocks_get_block").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
