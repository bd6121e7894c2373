package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// ChainPolygon is the Polygon mainnet chain id.
	ChainPolygon uint64 = 137
	// ChainAmoy is the Polygon Amoy testnet chain id.
	ChainAmoy uint64 = 80002
)

// ContractConfig holds the on-chain addresses an order interacts with.
// Neg-risk markets settle through an alternate exchange contract.
type ContractConfig struct {
	Exchange          common.Address
	Collateral        common.Address
	ConditionalTokens common.Address
}

type registryKey struct {
	chainID uint64
	negRisk bool
}

var contracts = map[registryKey]ContractConfig{
	{ChainPolygon, false}: {
		Exchange:          common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
		Collateral:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		ConditionalTokens: common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"),
	},
	{ChainPolygon, true}: {
		Exchange:          common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
		Collateral:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		ConditionalTokens: common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"),
	},
	{ChainAmoy, false}: {
		Exchange:          common.HexToAddress("0xdFE02Eb6733538f8Ea35D585af8DE5958AD99E40"),
		Collateral:        common.HexToAddress("0x9c4e1703476e875070ee25b56a58b008cfb8fa78"),
		ConditionalTokens: common.HexToAddress("0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB"),
	},
	{ChainAmoy, true}: {
		Exchange:          common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
		Collateral:        common.HexToAddress("0x9c4e1703476e875070ee25b56a58b008cfb8fa78"),
		ConditionalTokens: common.HexToAddress("0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB"),
	},
}

var ErrContractNotFound = errors.New("no contract config for chain id and neg risk flag")

// GetContractConfig resolves the settlement addresses for a chain and market
// variant.
func GetContractConfig(chainID uint64, negRisk bool) (ContractConfig, error) {
	cfg, ok := contracts[registryKey{chainID, negRisk}]
	if !ok {
		return ContractConfig{}, fmt.Errorf("%w: chain_id=%d neg_risk=%t", ErrContractNotFound, chainID, negRisk)
	}
	return cfg, nil
}
