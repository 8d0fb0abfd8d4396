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
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

// ZoneHash computes a stable 64-bit content hash over a Zone's direct
// children. The result only depends on the multiset of child specs, never
// on the order they were listed in by the API server: both slices are
// canonically sorted before hashing.
func ZoneHash(childZones []kubizonev1alpha1.ZoneSpec, childRecords []kubizonev1alpha1.RecordSpec) uint64 {
	zoneLines := make([]string, len(childZones))
	for i, z := range childZones {
		zoneLines[i] = encodeZoneSpec(z)
	}
	sort.Strings(zoneLines)

	recordLines := make([]string, len(childRecords))
	for i, r := range childRecords {
		recordLines[i] = encodeRecordSpec(r)
	}
	sort.Strings(recordLines)

	var b strings.Builder
	b.WriteString("zones:\n")
	for _, l := range zoneLines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("records:\n")
	for _, l := range recordLines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	return xxhash.Sum64String(b.String())
}

func encodeZoneSpec(z kubizonev1alpha1.ZoneSpec) string {
	var b strings.Builder
	b.WriteString(z.DomainName)
	b.WriteByte('\x1f')
	if z.ZoneRef != nil {
		b.WriteString(z.ZoneRef.Name)
		b.WriteByte('\x1f')
		if z.ZoneRef.Namespace != nil {
			b.WriteString(*z.ZoneRef.Namespace)
		}
	}
	b.WriteByte('\x1f')
	delegations := make([]string, len(z.Delegations))
	for i, d := range z.Delegations {
		delegations[i] = encodeDelegation(d)
	}
	sort.Strings(delegations)
	b.WriteString(strings.Join(delegations, "\x1e"))
	return b.String()
}

func encodeRecordSpec(r kubizonev1alpha1.RecordSpec) string {
	var b strings.Builder
	b.WriteString(r.DomainName)
	b.WriteByte('\x1f')
	if r.ZoneRef != nil {
		b.WriteString(r.ZoneRef.Name)
		b.WriteByte('\x1f')
		if r.ZoneRef.Namespace != nil {
			b.WriteString(*r.ZoneRef.Namespace)
		}
	}
	b.WriteByte('\x1f')
	b.WriteString(r.Type)
	b.WriteByte('\x1f')
	class := r.Class
	if class == "" {
		class = kubizonev1alpha1.DefaultRecordClass
	}
	b.WriteString(class)
	b.WriteByte('\x1f')
	if r.TTL != nil {
		b.WriteString(strconv.FormatUint(uint64(*r.TTL), 10))
	}
	b.WriteByte('\x1f')
	b.WriteString(r.RData)
	return b.String()
}

func encodeDelegation(d kubizonev1alpha1.Delegation) string {
	var b strings.Builder
	namespaces := append([]string(nil), d.Namespaces...)
	sort.Strings(namespaces)
	b.WriteString(strings.Join(namespaces, ","))
	b.WriteByte('\x1f')
	zones := append([]string(nil), d.Zones...)
	sort.Strings(zones)
	b.WriteString(strings.Join(zones, ","))
	b.WriteByte('\x1f')
	records := make([]string, len(d.Records))
	for i, r := range d.Records {
		types := append([]string(nil), r.RecordTypes...)
		sort.Strings(types)
		records[i] = r.Pattern + "=" + strings.Join(types, ",")
	}
	sort.Strings(records)
	b.WriteString(strings.Join(records, ";"))
	return b.String()
}
