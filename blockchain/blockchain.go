// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/numichain/numichain/block"
	"github.com/numichain/numichain/chaincfg"
	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/mempool"
	"github.com/numichain/numichain/transaction"
)

// Blockchain is the consensus engine: the block-tree index, the current
// best chain, account state, and the mempool handle, all protected by a
// single write lock. Readers take the read lock; the engine never calls
// into an external collaborator while holding it, per spec.md §5.
type Blockchain struct {
	mu sync.RWMutex

	params chaincfg.Params

	blocks     map[crypto.Hash]*blockNode
	mainChain  []crypto.Hash
	accounts   map[string]AccountState
	orphans    map[crypto.Hash]*orphanBlock
	blockTimes []blockTimeEntry

	totalSupply       uint64
	currentDifficulty uint32
	averageBlockTime  time.Duration
	lastBlockTime     time.Time
	bestBlockHash     crypto.Hash
	cumulativeWork    *uint256.Int

	genesisHash crypto.Hash

	// restoreQueue holds transactions disconnected during the
	// in-progress call to AddBlock, to be handed back to the mempool
	// once bc.mu is released. See disconnectBlockLocked.
	restoreQueue []*transaction.Transaction

	Mempool *mempool.Mempool

	// skipPowVerification is set only while replaying blocks loaded
	// from storage, per spec.md §6: load_from_storage reconstructs by
	// grouping on height and replaying through AddBlock with PoW
	// verification disabled.
	skipPowVerification bool
}

// New constructs an engine with the given parameters and mempool, builds
// its genesis block signed by genesisKeypair with header and coinbase
// timestamps pinned to genesisTime, and processes it. The entire initial
// supply is allocated to the genesis keypair's public key via a single
// MiningReward at height 0. Pinning genesisTime (rather than letting the
// genesis construction stamp time.Now()) is what makes the genesis
// block, and so the whole chain built on it, reproducible across runs.
func New(params chaincfg.Params, mp *mempool.Mempool, genesisKeypair *crypto.Keypair, genesisTime time.Time) (*Blockchain, error) {
	bc := &Blockchain{
		params:            params,
		blocks:            make(map[crypto.Hash]*blockNode),
		accounts:          make(map[string]AccountState),
		orphans:           make(map[crypto.Hash]*orphanBlock),
		currentDifficulty: 1,
		cumulativeWork:    new(uint256.Int),
		Mempool:           mp,
	}

	mp.SetBalanceSource(bc)

	genesis, err := bc.buildGenesisBlock(params, genesisKeypair, genesisTime)
	if err != nil {
		return nil, err
	}

	if _, err := bc.AddBlock(genesis); err != nil {
		return nil, err
	}

	bc.genesisHash = genesis.Hash()

	return bc, nil
}

func (bc *Blockchain) buildGenesisBlock(params chaincfg.Params, keypair *crypto.Keypair, genesisTime time.Time) (*block.Block, error) {
	reward := transaction.NewMiningReward(keypair.PublicKey(), 0, params.InitialReward, nil)
	reward.Timestamp = genesisTime
	reward.ValidUntil = genesisTime.Add(time.Hour)
	if err := reward.Sign(keypair); err != nil {
		return nil, err
	}

	genesis := block.New(nil, 1, keypair.PublicKey(), []*transaction.Transaction{reward})
	genesis.Header.Timestamp = genesisTime
	if err := genesis.Sign(keypair); err != nil {
		return nil, err
	}
	return genesis, nil
}

// Balance implements mempool.BalanceSource.
func (bc *Blockchain) Balance(pubKey crypto.PublicKey) (uint64, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	state, ok := bc.accounts[string(pubKey)]
	if !ok {
		return 0, false
	}
	return state.Balance, true
}

// Height returns the height of the current best block.
func (bc *Blockchain) Height() uint64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if len(bc.mainChain) == 0 {
		return 0
	}
	return uint64(len(bc.mainChain) - 1)
}

// Difficulty returns the current difficulty.
func (bc *Blockchain) Difficulty() uint32 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.currentDifficulty
}

// GenesisHash returns the hash of the engine's genesis block.
func (bc *Blockchain) GenesisHash() crypto.Hash {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.genesisHash
}

// BestBlockHash returns the hash of the current best block.
func (bc *Blockchain) BestBlockHash() crypto.Hash {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.bestBlockHash
}

// LatestBlock returns the current best block, or nil if the engine has
// not processed genesis yet.
func (bc *Blockchain) LatestBlock() *block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	node, ok := bc.blocks[bc.bestBlockHash]
	if !ok {
		return nil
	}
	return node.block
}

// BlockByHeight returns the main-chain block at height, if any.
func (bc *Blockchain) BlockByHeight(height uint64) (*block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if height >= uint64(len(bc.mainChain)) {
		return nil, false
	}
	node, ok := bc.blocks[bc.mainChain[height]]
	if !ok {
		return nil, false
	}
	return node.block, true
}

// BlockByHash returns the block with the given hash, from any chain.
func (bc *Blockchain) BlockByHash(hash crypto.Hash) (*block.Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	node, ok := bc.blocks[hash]
	if !ok {
		return nil, false
	}
	return node.block, true
}

// Account returns the current state of the account for pubKey.
func (bc *Blockchain) Account(pubKey crypto.PublicKey) AccountState {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.accounts[string(pubKey)]
}

// TotalSupply returns the engine's current total supply.
func (bc *Blockchain) TotalSupply() uint64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.totalSupply
}

// AverageBlockTime returns the rolling average block time.
func (bc *Blockchain) AverageBlockTime() time.Duration {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.averageBlockTime
}

// MiningReward returns the block subsidy at height under this engine's
// parameters.
func (bc *Blockchain) MiningReward(height uint64) uint64 {
	return bc.params.MiningReward(height)
}

// AddTransaction delegates to the mempool.
func (bc *Blockchain) AddTransaction(tx *transaction.Transaction) mempool.ValidationResult {
	return bc.Mempool.AddTransaction(tx)
}

// GetTransactionsForBlock delegates to the mempool.
func (bc *Blockchain) GetTransactionsForBlock(maxSize, maxCount int) []*transaction.Transaction {
	return bc.Mempool.SelectForBlock(maxSize, maxCount)
}

// PendingTransactionCount delegates to the mempool.
func (bc *Blockchain) PendingTransactionCount() int {
	return bc.Mempool.Len()
}

// MempoolStats delegates to the mempool.
func (bc *Blockchain) MempoolStats() mempool.Stats {
	return bc.Mempool.Stats()
}

// GetChainState returns a point-in-time snapshot of every scalar the
// engine tracks, for callers that want a single consistent read instead
// of several separately-locked accessor calls.
func (bc *Blockchain) GetChainState() ChainStateSnapshot {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.snapshot()
}

// PerformMaintenance runs mempool expiry, orphan-pool cleanup, and a
// best-effort internal consistency check, logging (but not returning)
// any inconsistency it finds so callers can run it unconditionally on a
// timer.
func (bc *Blockchain) PerformMaintenance() {
	bc.Mempool.PerformMaintenance()
	bc.cleanupOldOrphans()
	if err := bc.ValidateChain(); err != nil {
		log.Criticalf("chain validation failed during maintenance: %v", err)
	}
}

func (bc *Blockchain) snapshot() ChainStateSnapshot {
	return ChainStateSnapshot{
		TotalBlocks:       uint64(len(bc.mainChain)),
		TotalSupply:       bc.totalSupply,
		CurrentDifficulty: bc.currentDifficulty,
		AverageBlockTime:  int64(bc.averageBlockTime),
		LastBlockTime:     bc.lastBlockTime.UnixNano(),
		BestBlockHash:     bc.bestBlockHash,
		CumulativeWork:    bc.cumulativeWork.Bytes32(),
	}
}

func (bc *Blockchain) restoreSnapshot(s ChainStateSnapshot) {
	bc.totalSupply = s.TotalSupply
	bc.currentDifficulty = s.CurrentDifficulty
	bc.averageBlockTime = time.Duration(s.AverageBlockTime)
	bc.lastBlockTime = time.Unix(0, s.LastBlockTime).UTC()
	bc.bestBlockHash = s.BestBlockHash
	bc.cumulativeWork = new(uint256.Int).SetBytes(s.CumulativeWork[:])
}
