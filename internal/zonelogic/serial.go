/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package zonelogic

import "time"

// NextSerial computes the next SOA serial per RFC 1912 section 2.2:
// date-based when that would already be larger than a plain increment,
// strictly monotonic otherwise.
func NextSerial(current uint32, now time.Time) uint32 {
	today := dateSerial(now)
	next := current + 1
	if today > next {
		return today
	}
	return next
}

// dateSerial renders now as a YYYYMMDD00 serial, UTC.
func dateSerial(now time.Time) uint32 {
	now = now.UTC()
	return uint32(now.Year())*1000000 + uint32(now.Month())*10000 + uint32(now.Day())*100
}
