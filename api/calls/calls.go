// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/api/utils"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/runtime"
)

var logger = log.WithContext("pkg", "calls")

// Calls accepts signed calls into the pool and serves their receipts.
type Calls struct {
	rt   *runtime.Runtime
	pool *runtime.Pool
}

func New(rt *runtime.Runtime, pool *runtime.Pool) *Calls {
	return &Calls{rt, pool}
}

func (c *Calls) handleSendCall(w http.ResponseWriter, req *http.Request) error {
	var raw RawCall
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(raw.Raw)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	var call runtime.Call
	if err := rlp.DecodeBytes(data, &call); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	origin, err := c.pool.Add(&call)
	if err != nil {
		switch {
		case errors.Is(err, runtime.ErrUnauthorized):
			return utils.Forbidden(err)
		case runtime.IsErrKnownCall(err):
			return utils.BadRequest(err)
		case runtime.IsErrPoolFull(err):
			return utils.HTTPError(err, http.StatusServiceUnavailable)
		default:
			return utils.BadRequest(err)
		}
	}

	id := call.ID(origin)
	logger.Debug("call received", "id", id, "origin", origin)
	return utils.WriteJSON(w, &SendResult{ID: id, Origin: origin})
}

func (c *Calls) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	receipt, err := c.rt.GetReceipt(id)
	if err != nil {
		return err
	}
	if receipt == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("calls_send_call").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSendCall))
	sub.Path("/{id}/receipt").
		Methods(http.MethodGet).
		Name("calls_get_receipt").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetReceipt))
}
