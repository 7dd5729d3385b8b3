// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"errors"
	"log/slog"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/dispatch"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
)

// StrategyChoiceManager serves the strategy-choice module.
type StrategyChoiceManager struct {
	choices *table.StrategyChoiceTable
	logger  *slog.Logger
}

// NewStrategyChoiceManager returns a manager editing choices.
func NewStrategyChoiceManager(choices *table.StrategyChoiceTable, logger *slog.Logger) *StrategyChoiceManager {
	return &StrategyChoiceManager{choices: choices, logger: logger}
}

// Register adds the strategy-choice commands and dataset to d.
func (m *StrategyChoiceManager) Register(d *dispatch.Dispatcher) {
	module := authenticator.PrivilegeStrategyChoice
	d.AddControlCommand(module, "set", dispatch.ControlCommand{
		Schema:  controlparams.Schema{Required: []controlparams.Field{controlparams.FieldName, controlparams.FieldStrategy}},
		Handler: m.set,
	})
	d.AddControlCommand(module, "unset", dispatch.ControlCommand{
		Schema:  controlparams.Schema{Required: []controlparams.Field{controlparams.FieldName}},
		Handler: m.unset,
	})
	d.AddStatusDataset(module, "list", m.list)
}

func (m *StrategyChoiceManager) set(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	if tooLong(params.Name()) {
		done(response.New(StatusPrefixTooLong, "Prefix is too long"))
		return nil
	}
	err := m.choices.Set(params.Name(), params.Strategy())
	if errors.Is(err, table.ErrUnknownStrategy) {
		done(response.New(StatusUnknownStrategy, "Strategy not registered"))
		return nil
	}
	if err != nil {
		return err
	}
	m.logger.Info("strategy set", "prefix", params.Name().String(), "strategy", params.Strategy().String())
	respondOK(done, params)
	return nil
}

func (m *StrategyChoiceManager) unset(request *dispatch.Request, done dispatch.Continuation) error {
	params := request.Parameters
	err := m.choices.Unset(params.Name())
	if errors.Is(err, table.ErrUnsetRoot) {
		done(response.New(response.StatusMalformedParameters, response.TextMalformedParameters))
		return nil
	}
	if err != nil {
		return err
	}
	m.logger.Info("strategy unset", "prefix", params.Name().String())
	respondOK(done, params)
	return nil
}

func (m *StrategyChoiceManager) list(name.Name) ([]byte, error) {
	return EncodeStrategyChoices(m.choices.Entries()), nil
}
