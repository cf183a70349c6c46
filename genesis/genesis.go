// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/kv"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/runtime"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

var logger = log.WithContext("pkg", "genesis")

// Config is the yaml form of the ledger constants. Zero fields take the defaults.
type Config struct {
	EpochLength           uint32 `yaml:"epochLength"`
	MinimumValidatorStake uint64 `yaml:"minimumValidatorStake"`
	MinimumNominatorStake uint64 `yaml:"minimumNominatorStake"`
	MaxAuthorities        uint32 `yaml:"maxAuthorities"`
	PoolID                string `yaml:"poolId"`
}

// Endowment credits an account at genesis.
type Endowment struct {
	Address thor.Address `yaml:"address"`
	Amount  uint64       `yaml:"amount"`
}

// Validator registers an account at genesis. Its stake is taken from its endowment.
type Validator struct {
	Address    thor.Address `yaml:"address"`
	SessionKey thor.Bytes32 `yaml:"sessionKey"`
	Stake      uint64       `yaml:"stake"`
}

// Nomination is made at genesis, after every validator is registered.
type Nomination struct {
	Nominator thor.Address `yaml:"nominator"`
	Nominee   thor.Address `yaml:"nominee"`
	Stake     uint64       `yaml:"stake"`
}

// Genesis describes the initial state of a ledger.
type Genesis struct {
	Name        string            `yaml:"name"`
	Timestamp   uint64            `yaml:"timestamp"`
	Config      Config            `yaml:"config"`
	Overrides   map[string]uint32 `yaml:"overrides"`
	Endowments  []Endowment       `yaml:"endowments"`
	Validators  []Validator       `yaml:"validators"`
	Nominations []Nomination      `yaml:"nominations"`
}

// Load reads a yaml genesis file.
func Load(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a yaml genesis.
func Parse(r io.Reader) (*Genesis, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if _, err := gen.DPoSConfig(); err != nil {
		return nil, err
	}
	if err := gen.checkOverrides(); err != nil {
		return nil, err
	}
	return &gen, nil
}

func (g *Genesis) checkOverrides() error {
	for _, name := range sortedKeys(g.Overrides) {
		if !dpos.IsConfigVariable(name) {
			return errors.Errorf("unknown override %q", name)
		}
	}
	return nil
}

// DPoSConfig returns the ledger constants, defaults filled in.
func (g *Genesis) DPoSConfig() (dpos.Config[uint64], error) {
	cfg := dpos.DefaultConfig[uint64]()
	if g.Config.EpochLength != 0 {
		cfg.EpochLength = g.Config.EpochLength
	}
	if g.Config.MinimumValidatorStake != 0 {
		cfg.MinimumValidatorStake = g.Config.MinimumValidatorStake
	}
	if g.Config.MinimumNominatorStake != 0 {
		cfg.MinimumNominatorStake = g.Config.MinimumNominatorStake
	}
	if g.Config.MaxAuthorities != 0 {
		cfg.MaxAuthorities = g.Config.MaxAuthorities
	}
	if g.Config.PoolID != "" {
		cfg.PoolAccount = thor.DerivePoolAccount(g.Config.PoolID)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "genesis config")
	}
	return cfg, nil
}

// ID identifies the chain. It is the hash of the genesis content.
func (g *Genesis) ID() thor.Bytes32 {
	overrides := make([][]any, 0, len(g.Overrides))
	for _, name := range sortedKeys(g.Overrides) {
		overrides = append(overrides, []any{name, g.Overrides[name]})
	}
	data, _ := rlp.EncodeToBytes([]any{
		g.Name,
		g.Timestamp,
		[]any{g.Config.EpochLength, g.Config.MinimumValidatorStake, g.Config.MinimumNominatorStake, g.Config.MaxAuthorities, g.Config.PoolID},
		overrides,
		g.Endowments,
		g.Validators,
		g.Nominations,
	})
	return thor.Blake2b(data)
}

// Build writes the genesis state into db, or checks db already holds this genesis.
func (g *Genesis) Build(db kv.Store) (*runtime.Block, error) {
	id := g.ID()
	existing, err := runtime.GenesisID(db)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis id")
	}
	if !existing.IsZero() {
		if existing != id {
			return nil, errors.Errorf("database holds genesis %s, not %s", existing.AbbrevString(), id.AbbrevString())
		}
		logger.Debug("genesis already built", "id", id)
		return nil, nil
	}

	cfg, err := g.DPoSConfig()
	if err != nil {
		return nil, err
	}
	if err := g.checkOverrides(); err != nil {
		return nil, err
	}

	st := state.New(db)
	for _, name := range sortedKeys(g.Overrides) {
		slot := solidity.NewConfigVariable(name, 0).Slot()
		st.SetStorage(thor.DPoSContract, slot, thor.BytesToBytes32(uint32Bytes(g.Overrides[name])))
	}

	contracts, err := runtime.NewContracts(st, cfg, discardEvents{})
	if err != nil {
		return nil, err
	}
	for _, e := range g.Endowments {
		if err := contracts.Currency.Mint(e.Address, e.Amount); err != nil {
			return nil, errors.Wrapf(err, "endow %s", e.Address)
		}
	}
	for _, v := range g.Validators {
		if err := contracts.Ledger.RegisterValidator(v.Address, v.SessionKey, v.Stake); err != nil {
			return nil, errors.Wrapf(err, "register genesis validator %s", v.Address)
		}
	}
	for _, n := range g.Nominations {
		if err := contracts.Ledger.Nominate(n.Nominator, n.Nominee, n.Stake); err != nil {
			return nil, errors.Wrapf(err, "genesis nomination by %s", n.Nominator)
		}
	}
	updated, _, err := contracts.Ledger.OnBlockStart(0)
	if err != nil {
		return nil, errors.Wrap(err, "select genesis authorities")
	}

	block, err := runtime.Init(db, id, st.Stage(), g.Timestamp, updated)
	if err != nil {
		return nil, err
	}
	logger.Info("genesis built", "id", id, "validators", len(g.Validators), "endowments", len(g.Endowments))
	return block, nil
}

type discardEvents struct{}

func (discardEvents) Emit(dpos.Event) {}
