// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// nfdmgmtctl sends signed management commands to nfdmgmtd and prints
// its status datasets.
//
//	nfdmgmtctl keygen --identity /localhost/operator --out operator.key
//	nfdmgmtctl --key operator.key fib add-nexthop name=/example cost=10
//	nfdmgmtctl --key operator.key rib announce /example --expiration 1h
//	nfdmgmtctl fib list
//
// Commands are signed with the key file given by --key, in the signed
// Interest format chosen by --format. Dataset listings need no key.
package main
