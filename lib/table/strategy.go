// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// DefaultStrategy is the strategy the root prefix starts with.
var DefaultStrategy = name.MustParse("/localhost/nfd/strategy/best-route")

var (
	ErrUnknownStrategy = errors.New("table: unknown strategy")
	ErrUnsetRoot       = errors.New("table: the root prefix always has a strategy")
)

// StrategyChoice is one prefix with its strategy.
type StrategyChoice struct {
	Prefix   name.Name
	Strategy name.Name
}

// StrategyChoiceTable maps prefixes to forwarding strategies. The root
// prefix always has an entry.
type StrategyChoiceTable struct {
	available []name.Name
	choices   map[string]StrategyChoice
}

// NewStrategyChoiceTable returns a table in which the root prefix uses
// DefaultStrategy. available lists the strategies Set accepts; it
// always includes DefaultStrategy.
func NewStrategyChoiceTable(available ...name.Name) *StrategyChoiceTable {
	t := &StrategyChoiceTable{
		available: []name.Name{DefaultStrategy},
		choices:   make(map[string]StrategyChoice),
	}
	for _, strategy := range available {
		if !t.isAvailable(strategy) {
			t.available = append(t.available, strategy)
		}
	}
	root := name.Name{}
	t.choices[root.String()] = StrategyChoice{Prefix: root, Strategy: DefaultStrategy}
	return t
}

// isAvailable reports whether strategy names an available strategy,
// either exactly or with a trailing version component.
func (t *StrategyChoiceTable) isAvailable(strategy name.Name) bool {
	return slices.ContainsFunc(t.available, func(candidate name.Name) bool {
		if candidate.Equal(strategy) {
			return true
		}
		return strategy.Len() == candidate.Len()+1 && candidate.IsPrefixOf(strategy) && strategy.At(-1).IsVersion()
	})
}

// Set chooses strategy for prefix.
func (t *StrategyChoiceTable) Set(prefix, strategy name.Name) error {
	if !t.isAvailable(strategy) {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	t.choices[prefix.String()] = StrategyChoice{Prefix: prefix, Strategy: strategy}
	return nil
}

// Unset removes the choice for prefix so that it inherits from its
// parent. Unsetting a prefix without a choice is not an error.
func (t *StrategyChoiceTable) Unset(prefix name.Name) error {
	if prefix.IsEmpty() {
		return ErrUnsetRoot
	}
	delete(t.choices, prefix.String())
	return nil
}

// FindEffective returns the strategy governing n: the choice with the
// longest prefix of n.
func (t *StrategyChoiceTable) FindEffective(n name.Name) StrategyChoice {
	for length := n.Len(); length >= 0; length-- {
		if choice, ok := t.choices[n.Prefix(length).String()]; ok {
			return choice
		}
	}
	panic("table: strategy choice table lost its root entry")
}

// Entries returns every choice in canonical name order.
func (t *StrategyChoiceTable) Entries() []StrategyChoice {
	entries := make([]StrategyChoice, 0, len(t.choices))
	for _, choice := range t.choices {
		entries = append(entries, choice)
	}
	slices.SortFunc(entries, func(a, b StrategyChoice) int { return a.Prefix.Compare(b.Prefix) })
	return entries
}

// Len returns the number of choices, including the root.
func (t *StrategyChoiceTable) Len() int { return len(t.choices) }
