// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestMiningRewardHalving(t *testing.T) {
	p := MainNetParams()

	tests := []struct {
		height uint64
		want   uint64
	}{
		{0, 50_000_000_000},
		{p.HalvingInterval - 1, 50_000_000_000},
		{p.HalvingInterval, 25_000_000_000},
		{p.HalvingInterval * 2, 12_500_000_000},
		{p.HalvingInterval * p.MaxHalvings, 0},
		{p.HalvingInterval * (p.MaxHalvings + 10), 0},
	}

	for _, tt := range tests {
		if got := p.MiningReward(tt.height); got != tt.want {
			t.Errorf("MiningReward(%d) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestBlockWorkMonotonicAndCapped(t *testing.T) {
	prev := BlockWork(0)
	for d := uint32(1); d <= 80; d++ {
		cur := BlockWork(d)
		if cur.Cmp(prev) < 0 {
			t.Fatalf("BlockWork(%d) = %s is less than BlockWork(%d) = %s", d, cur, d-1, prev)
		}
		prev = cur
	}

	if got := BlockWork(64); got.Cmp(BlockWork(100)) != 0 {
		t.Errorf("BlockWork(64) = %s, want equal to BlockWork(100) = %s (capped)", got, BlockWork(100))
	}
}
