// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlparams

import "fmt"

// TypeControlParameters is the TLV-TYPE of the ControlParameters block.
const TypeControlParameters = 104

// Field identifies one ControlParameters field by its TLV-TYPE.
type Field uint64

const (
	FieldName                          Field = 7
	FieldFaceID                        Field = 105
	FieldURI                           Field = 114
	FieldLocalURI                      Field = 129
	FieldOrigin                        Field = 111
	FieldCost                          Field = 106
	FieldCapacity                      Field = 131
	FieldCount                         Field = 132
	FieldFlags                         Field = 108
	FieldMask                          Field = 112
	FieldStrategy                      Field = 107
	FieldExpirationPeriod              Field = 109
	FieldFacePersistency               Field = 133
	FieldBaseCongestionMarkingInterval Field = 135
	FieldDefaultCongestionThreshold    Field = 136
	FieldMtu                           Field = 137
)

type fieldKind int

const (
	kindName fieldKind = iota
	kindUint
	kindString
	kindStrategy
	kindDuration
)

type fieldInfo struct {
	field Field
	label string
	kind  fieldKind
}

// fieldOrder is the encoding order. Decoding requires present fields
// to appear in this order.
var fieldOrder = []fieldInfo{
	{FieldName, "Name", kindName},
	{FieldFaceID, "FaceId", kindUint},
	{FieldURI, "Uri", kindString},
	{FieldLocalURI, "LocalUri", kindString},
	{FieldOrigin, "Origin", kindUint},
	{FieldCost, "Cost", kindUint},
	{FieldCapacity, "Capacity", kindUint},
	{FieldCount, "Count", kindUint},
	{FieldFlags, "Flags", kindUint},
	{FieldMask, "Mask", kindUint},
	{FieldStrategy, "Strategy", kindStrategy},
	{FieldExpirationPeriod, "ExpirationPeriod", kindDuration},
	{FieldFacePersistency, "FacePersistency", kindUint},
	{FieldBaseCongestionMarkingInterval, "BaseCongestionMarkingInterval", kindDuration},
	{FieldDefaultCongestionThreshold, "DefaultCongestionThreshold", kindUint},
	{FieldMtu, "Mtu", kindUint},
}

var fieldIndex = func() map[Field]int {
	index := make(map[Field]int, len(fieldOrder))
	for i, info := range fieldOrder {
		index[info.field] = i
	}
	return index
}()

func (f Field) String() string {
	if i, ok := fieldIndex[f]; ok {
		return fieldOrder[i].label
	}
	return fmt.Sprintf("Field(%d)", uint64(f))
}

// Known reports whether f is a ControlParameters field.
func (f Field) Known() bool {
	_, ok := fieldIndex[f]
	return ok
}

func (f Field) kind() fieldKind { return fieldOrder[fieldIndex[f]].kind }

// Origin values used by the RIB.
const (
	OriginApp       = 0
	OriginStatic    = 255
	OriginNLSR      = 128
	OriginPrefixAnn = 129
	OriginClient    = 65
	OriginAutoreg   = 64
	OriginAutoconf  = 66
)

// Route flags.
const (
	RouteFlagChildInherit = 1
	RouteFlagCapture      = 2
)
