// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"log/slog"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/dispatch"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/prefixann"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
)

// AnnouncementRouteCost is the cost of routes installed from prefix
// announcements.
const AnnouncementRouteCost = 2048

// RIBManager serves the rib module.
type RIBManager struct {
	rib    *table.RIB
	faces  FaceLookup
	keys   security.KeyResolver
	clock  clock.Clock
	logger *slog.Logger
}

// NewRIBManager returns a manager editing rib. Prefix announcements
// must be signed by a key keys can resolve.
func NewRIBManager(rib *table.RIB, faces FaceLookup, keys security.KeyResolver, clk clock.Clock, logger *slog.Logger) *RIBManager {
	return &RIBManager{rib: rib, faces: faces, keys: keys, clock: clk, logger: logger}
}

// Register adds the rib commands and dataset to d.
func (m *RIBManager) Register(d *dispatch.Dispatcher) {
	module := authenticator.PrivilegeRib
	d.AddControlCommand(module, "register", dispatch.ControlCommand{
		Schema: controlparams.Schema{
			Required: []controlparams.Field{controlparams.FieldName},
			Optional: []controlparams.Field{controlparams.FieldFaceID, controlparams.FieldOrigin, controlparams.FieldCost, controlparams.FieldFlags, controlparams.FieldExpirationPeriod},
			Defaults: controlparams.Defaults(
				controlparams.DefaultFaceID,
				controlparams.DefaultUint(controlparams.FieldOrigin, controlparams.OriginApp),
				controlparams.DefaultUint(controlparams.FieldCost, 0),
				controlparams.DefaultUint(controlparams.FieldFlags, controlparams.RouteFlagChildInherit),
			),
		},
		Handler: m.register,
	})
	d.AddControlCommand(module, "unregister", dispatch.ControlCommand{
		Schema: controlparams.Schema{
			Required: []controlparams.Field{controlparams.FieldName},
			Optional: []controlparams.Field{controlparams.FieldFaceID, controlparams.FieldOrigin},
			Defaults: controlparams.Defaults(controlparams.DefaultFaceID, controlparams.DefaultUint(controlparams.FieldOrigin, controlparams.OriginApp)),
		},
		Handler: m.unregister,
	})
	d.AddControlCommand(module, "announce", dispatch.ControlCommand{
		Parse:   dispatch.ParseAnnouncement,
		Handler: m.announce,
	})
	d.AddStatusDataset(module, "list", m.list)
}

func (m *RIBManager) register(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	if _, ok := m.faces.Get(params.FaceID()); !ok {
		done(response.New(StatusFaceNotFound, "Face not found"))
		return nil
	}
	route := table.Route{
		FaceID: params.FaceID(),
		Origin: params.Origin(),
		Cost:   params.Cost(),
		Flags:  params.Flags(),
	}
	if params.Has(controlparams.FieldExpirationPeriod) {
		route.ExpirationPeriod = params.ExpirationPeriod()
	}
	m.rib.Register(params.Name(), route)
	m.logger.Info("route registered",
		"prefix", params.Name().String(),
		"face", route.FaceID,
		"origin", route.Origin,
		"cost", route.Cost,
		"expires_in", route.ExpirationPeriod,
	)
	respondOK(done, params)
	return nil
}

func (m *RIBManager) unregister(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	if m.rib.Unregister(params.Name(), params.FaceID(), params.Origin()) {
		m.logger.Info("route unregistered",
			"prefix", params.Name().String(), "face", params.FaceID(), "origin", params.Origin())
	}
	respondOK(done, params)
	return nil
}

// announce installs a route from a prefix announcement. The route
// lives for the announcement's expiration period, cut short by its
// validity period.
func (m *RIBManager) announce(request *dispatch.Request, done dispatch.Continuation) error {
	announcement := request.Announcement
	if err := prefixann.Verify(request.AnnouncementData, m.keys); err != nil {
		m.logger.Debug("prefix announcement rejected",
			"prefix", announcement.Prefix.String(), "error", err)
		done(response.New(response.StatusForbidden, "prefix announcement rejected"))
		return nil
	}
	lifetime := announcement.RouteLifetime(m.clock.Now())
	if lifetime <= 0 {
		done(response.New(response.StatusForbidden, "prefix announcement expired"))
		return nil
	}

	route := table.Route{
		FaceID:           request.FaceID(),
		Origin:           controlparams.OriginPrefixAnn,
		Cost:             AnnouncementRouteCost,
		Flags:            controlparams.RouteFlagChildInherit,
		ExpirationPeriod: lifetime,
	}
	m.rib.Register(announcement.Prefix, route)
	m.logger.Info("route announced",
		"prefix", announcement.Prefix.String(),
		"face", route.FaceID,
		"version", announcement.Version,
		"expires_in", lifetime,
	)

	applied := controlparams.New().
		SetName(announcement.Prefix).
		SetFaceID(route.FaceID).
		SetOrigin(route.Origin).
		SetCost(route.Cost).
		SetFlags(route.Flags).
		SetExpirationPeriod(lifetime)
	respondOK(done, applied)
	return nil
}

func (m *RIBManager) list(name.Name) ([]byte, error) {
	return EncodeRIB(m.rib.Entries(), m.clock.Now()), nil
}
