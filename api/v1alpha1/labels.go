/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package v1alpha1

import "fmt"

const (
	// ParentZoneLabel records the Zone/Record's resolved parent Zone, encoded
	// as "<parent-name>.<parent-namespace>". Written by the resolver,
	// read as a list selector by the fan-out watch and by hash/render computation.
	ParentZoneLabel = "kubi.zone/parent-zone"

	// ZoneFileLabel is the back-reference applied to a Zone by the
	// ZoneFile that renders it, encoded as "<zonefile-name>.<zonefile-namespace>".
	ZoneFileLabel = "kubi.zone/zonefile"
)

// ZoneReferenceLabel formats the canonical "<name>.<namespace>" encoding
// used by both ParentZoneLabel and ZoneFileLabel.
func ZoneReferenceLabel(name, namespace string) string {
	return fmt.Sprintf("%s.%s", name, namespace)
}
