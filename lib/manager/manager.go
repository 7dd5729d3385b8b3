// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/dispatch"
	"github.com/bureau-foundation/nfdmgmt/lib/face"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
)

// Module-specific status codes.
const (
	StatusFaceNotFound      = 410
	StatusPrefixTooLong     = 414
	StatusUnknownStrategy   = 404
)

// MaxPrefixLength is the longest prefix the FIB and strategy choice
// table accept.
const MaxPrefixLength = 32

// FaceLookup finds a live face by id. *face.Table implements it.
type FaceLookup interface {
	Get(id uint64) (face.Face, bool)
}

// respondOK answers with the applied parameters.
func respondOK(done dispatch.Continuation, applied *controlparams.Parameters) {
	done(response.OK(applied.Encode()))
}

func tooLong(prefix name.Name) bool {
	return prefix.Len() > MaxPrefixLength
}
