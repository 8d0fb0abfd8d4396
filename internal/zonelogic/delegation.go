/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package zonelogic

import (
	"strings"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

// ValidatesZone reports whether one of delegations admits a child Zone
// named domain, claimed from namespace. Precondition (domain is a subdomain
// of the parent) is the caller's responsibility: this closed-world check
// only evaluates namespace and pattern coverage. An empty delegations list
// denies everything.
func ValidatesZone(delegations []kubizonev1alpha1.Delegation, namespace, domain string) bool {
	for _, d := range delegations {
		if !d.CoversNamespace(namespace) {
			continue
		}
		for _, pattern := range d.Zones {
			if Matches(pattern, domain) {
				return true
			}
		}
	}
	return false
}

// ValidatesRecord reports whether one of delegations admits a Record of the
// given type named domain, claimed from namespace.
func ValidatesRecord(delegations []kubizonev1alpha1.Delegation, namespace, domain, recordType string) bool {
	for _, d := range delegations {
		if !d.CoversNamespace(namespace) {
			continue
		}
		for _, r := range d.Records {
			if !Matches(r.Pattern, domain) {
				continue
			}
			if recordTypeAllowed(r.RecordTypes, recordType) {
				return true
			}
		}
	}
	return false
}

func recordTypeAllowed(allowed []string, recordType string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, t := range allowed {
		if strings.EqualFold(t, recordType) {
			return true
		}
	}
	return false
}

// IsSuffixOf reports whether fqdn is domain itself or a strict subdomain of
// it; both names are expected to be absolute (trailing-dot) forms.
func IsSuffixOf(domain, fqdn string) bool {
	if fqdn == domain {
		return true
	}
	return strings.HasSuffix(fqdn, "."+domain)
}
