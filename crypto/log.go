// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import "github.com/numichain/numichain/logs"

// log is this package's subsystem logger.
var log logs.Logger

func init() {
	log = logs.MustGet(logs.SubsystemTags.CRYP)
}
