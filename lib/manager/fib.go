// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"log/slog"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/dispatch"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
)

// FIBManager serves the fib module.
type FIBManager struct {
	fib    *table.FIB
	faces  FaceLookup
	logger *slog.Logger
}

// NewFIBManager returns a manager editing fib. Next hops may only name
// faces present in faces.
func NewFIBManager(fib *table.FIB, faces FaceLookup, logger *slog.Logger) *FIBManager {
	return &FIBManager{fib: fib, faces: faces, logger: logger}
}

// Register adds the fib commands and dataset to d.
func (m *FIBManager) Register(d *dispatch.Dispatcher) {
	module := authenticator.PrivilegeFib
	d.AddControlCommand(module, "add-nexthop", dispatch.ControlCommand{
		Schema: controlparams.Schema{
			Required: []controlparams.Field{controlparams.FieldName},
			Optional: []controlparams.Field{controlparams.FieldFaceID, controlparams.FieldCost},
			Defaults: controlparams.Defaults(controlparams.DefaultFaceID, controlparams.DefaultUint(controlparams.FieldCost, 0)),
		},
		Handler: m.addNextHop,
	})
	d.AddControlCommand(module, "remove-nexthop", dispatch.ControlCommand{
		Schema: controlparams.Schema{
			Required: []controlparams.Field{controlparams.FieldName},
			Optional: []controlparams.Field{controlparams.FieldFaceID},
			Defaults: controlparams.DefaultFaceID,
		},
		Handler: m.removeNextHop,
	})
	d.AddStatusDataset(module, "list", m.list)
}

func (m *FIBManager) addNextHop(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	prefix := params.Name()
	if tooLong(prefix) {
		done(response.New(StatusPrefixTooLong, "FIB entry prefix too long"))
		return nil
	}
	if _, ok := m.faces.Get(params.FaceID()); !ok {
		done(response.New(StatusFaceNotFound, "Face not found"))
		return nil
	}
	m.fib.AddNextHop(prefix, params.FaceID(), params.Cost())
	m.logger.Info("fib next hop added",
		"prefix", prefix.String(), "face", params.FaceID(), "cost", params.Cost())
	respondOK(done, params)
	return nil
}

// removeNextHop succeeds even when there was nothing to remove.
func (m *FIBManager) removeNextHop(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	if m.fib.RemoveNextHop(params.Name(), params.FaceID()) {
		m.logger.Info("fib next hop removed", "prefix", params.Name().String(), "face", params.FaceID())
	}
	respondOK(done, params)
	return nil
}

func (m *FIBManager) list(name.Name) ([]byte, error) {
	return EncodeFIB(m.fib.Entries()), nil
}
