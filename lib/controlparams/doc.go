// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package controlparams implements the ControlParameters block carried
// by management commands: a fixed set of optional typed fields encoded
// as one TLV element.
//
// A [Parameters] value tracks which fields are present. Encoding emits
// present fields in the fixed field order; decoding is its exact
// inverse and rejects unknown critical fields, repeated fields and
// fields out of order.
//
// Each command verb declares a [Schema] listing the fields it requires
// and the fields it accepts. [Schema.Validate] checks a decoded value
// against it and [Schema.Fill] applies the verb's defaults.
package controlparams
