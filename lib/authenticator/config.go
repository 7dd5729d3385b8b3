// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authenticator

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/config"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

// FromConfig builds a PrivilegeSet from configured authorizations.
// Public keys named by key_file entries are added to keys so the
// verifier can resolve them. Every problem is reported, joined, and
// no partial set is returned.
func FromConfig(entries []config.Authorization, keys *security.KeyChain) (*PrivilegeSet, error) {
	privileges := New()
	var loaded []*security.Key
	var errs []error

	for i, entry := range entries {
		if err := checkPrivileges(entry.Privileges); err != nil {
			errs = append(errs, fmt.Errorf("authorizations[%d]: %w", i, err))
			continue
		}

		if entry.Identity == AnyIdentity {
			if entry.KeyFile != "" {
				errs = append(errs, fmt.Errorf("authorizations[%d]: identity %q cannot have a key_file", i, AnyIdentity))
				continue
			}
			// checkPrivileges above guarantees success.
			_ = privileges.GrantAny(entry.Privileges...)
			continue
		}

		var identity name.Name
		if entry.Identity != "" {
			parsed, err := name.Parse(entry.Identity)
			if err != nil {
				errs = append(errs, fmt.Errorf("authorizations[%d]: identity: %w", i, err))
				continue
			}
			identity = parsed
		}
		if entry.KeyFile != "" {
			key, err := security.LoadKeyFile(entry.KeyFile)
			if err != nil {
				errs = append(errs, fmt.Errorf("authorizations[%d]: %w", i, err))
				continue
			}
			if entry.Identity != "" && !key.Identity().Equal(identity) {
				errs = append(errs, fmt.Errorf("authorizations[%d]: key_file belongs to %s, not %s", i, key.Identity(), identity))
				continue
			}
			identity = key.Identity()
			loaded = append(loaded, key.PublicOnly())
		}
		if identity.IsEmpty() {
			errs = append(errs, fmt.Errorf("authorizations[%d]: identity or key_file is required", i))
			continue
		}
		_ = privileges.Grant(identity, entry.Privileges...)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, key := range loaded {
		keys.AddKey(key)
	}
	return privileges, nil
}
