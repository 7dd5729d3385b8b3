// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/manager"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
)

type nextHopRow struct {
	FaceID uint64 `json:"face_id"`
	Cost   uint64 `json:"cost"`
}

type fibRow struct {
	Prefix   string       `json:"prefix"`
	NextHops []nextHopRow `json:"next_hops"`
}

type ribRow struct {
	Prefix    string `json:"prefix"`
	FaceID    uint64 `json:"face_id"`
	Origin    uint64 `json:"origin"`
	Cost      uint64 `json:"cost"`
	Flags     uint64 `json:"flags"`
	ExpiresIn string `json:"expires_in,omitempty"`
}

type strategyRow struct {
	Prefix   string `json:"prefix"`
	Strategy string `json:"strategy"`
}

// list fetches and prints a module's status dataset.
func (a *app) list(module string) error {
	ctx, cancel := a.context()
	defer cancel()
	s, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := response.Fetch(ctx, s.face, s.prefix.AppendString(module, "list"), nil)
	if err != nil {
		return fmt.Errorf("%s/list: %w", module, err)
	}

	switch module {
	case authenticator.PrivilegeFib:
		entries, err := manager.DecodeFIB(result.Content)
		if err != nil {
			return err
		}
		rows := fibRows(entries)
		return a.printRows(rows, func(w io.Writer) {
			fmt.Fprintln(w, "PREFIX\tNEXT HOPS")
			for _, row := range rows {
				hops := make([]string, len(row.NextHops))
				for i, hop := range row.NextHops {
					hops[i] = fmt.Sprintf("face=%d cost=%d", hop.FaceID, hop.Cost)
				}
				fmt.Fprintf(w, "%s\t%s\n", row.Prefix, strings.Join(hops, ", "))
			}
		})
	case authenticator.PrivilegeRib:
		entries, err := manager.DecodeRIB(result.Content)
		if err != nil {
			return err
		}
		rows := ribRows(entries)
		return a.printRows(rows, func(w io.Writer) {
			fmt.Fprintln(w, "PREFIX\tFACE\tORIGIN\tCOST\tFLAGS\tEXPIRES IN")
			for _, row := range rows {
				expires := row.ExpiresIn
				if expires == "" {
					expires = "never"
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n", row.Prefix, row.FaceID, row.Origin, row.Cost, row.Flags, expires)
			}
		})
	case authenticator.PrivilegeStrategyChoice:
		choices, err := manager.DecodeStrategyChoices(result.Content)
		if err != nil {
			return err
		}
		rows := make([]strategyRow, len(choices))
		for i, choice := range choices {
			rows[i] = strategyRow{Prefix: choice.Prefix.String(), Strategy: choice.Strategy.String()}
		}
		return a.printRows(rows, func(w io.Writer) {
			fmt.Fprintln(w, "PREFIX\tSTRATEGY")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", row.Prefix, row.Strategy)
			}
		})
	}
	return fmt.Errorf("module %q has no dataset", module)
}

// printRows writes rows as JSON under --json, otherwise as a table.
func (a *app) printRows(rows any, text func(w io.Writer)) error {
	if a.json {
		return writeJSON(a.out, rows)
	}
	tw := tabwriter.NewWriter(a.out, 2, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func fibRows(entries []table.FIBEntry) []fibRow {
	rows := make([]fibRow, len(entries))
	for i, entry := range entries {
		rows[i] = fibRow{Prefix: entry.Prefix.String(), NextHops: make([]nextHopRow, len(entry.NextHops))}
		for j, hop := range entry.NextHops {
			rows[i].NextHops[j] = nextHopRow{FaceID: hop.FaceID, Cost: hop.Cost}
		}
	}
	return rows
}

func ribRows(entries []table.RIBEntry) []ribRow {
	var rows []ribRow
	for _, entry := range entries {
		for _, route := range entry.Routes {
			row := ribRow{
				Prefix: entry.Prefix.String(),
				FaceID: route.FaceID,
				Origin: route.Origin,
				Cost:   route.Cost,
				Flags:  route.Flags,
			}
			if route.ExpirationPeriod > 0 {
				row.ExpiresIn = route.ExpirationPeriod.Round(time.Second).String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}
