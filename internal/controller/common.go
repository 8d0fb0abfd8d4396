/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package controller

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

// Requeue intervals, in seconds, one per distinct reconcile outcome.
const (
	requeueNotFound     = 30
	requeuePrerequisite = 5
	requeuePolicy       = 300
	requeueConfigError  = 300
	requeueSteadyState  = 30
)

// Field-manager identities for server-side apply / patch ownership.
const (
	fieldManagerResolver = "kubi.zone/zone-resolver"
	fieldManagerZoneFile = "kubi.zone/zonefile"
)

const (
	conditionResolved = "Resolved"

	reasonResolved         = "Resolved"
	reasonParentNotFound   = "ParentNotFound"
	reasonParentNotReady   = "ParentNotReady"
	reasonDelegationDenied = "DelegationDenied"
	reasonConfigurationErr = "ConfigurationError"
)

// resolveZoneRef defaults ref's namespace to fallbackNamespace when unset.
func resolveZoneRef(ref *kubizonev1alpha1.ZoneRef, fallbackNamespace string) (name, namespace string) {
	namespace = fallbackNamespace
	if ref.Namespace != nil && *ref.Namespace != "" {
		namespace = *ref.Namespace
	}
	return ref.Name, namespace
}

// parentZoneLabelSelector builds the value to match against
// kubizonev1alpha1.ParentZoneLabel for objects bound to the Zone identified
// by name/namespace.
func parentZoneLabelSelector(name, namespace string) client.MatchingLabels {
	return client.MatchingLabels{
		kubizonev1alpha1.ParentZoneLabel: kubizonev1alpha1.ZoneReferenceLabel(name, namespace),
	}
}

// zoneFileLabelSelector builds the value to match against
// kubizonev1alpha1.ZoneFileLabel for the Zone rendered by the ZoneFile
// identified by name/namespace.
func zoneFileLabelSelector(name, namespace string) client.MatchingLabels {
	return client.MatchingLabels{
		kubizonev1alpha1.ZoneFileLabel: kubizonev1alpha1.ZoneReferenceLabel(name, namespace),
	}
}

// setCondition stamps a single "Resolved" condition, mirroring the
// observedGeneration alongside it.
func setCondition(conditions *[]metav1.Condition, generation int64, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(conditions, metav1.Condition{
		Type:               conditionResolved,
		Status:             status,
		ObservedGeneration: generation,
		Reason:             reason,
		Message:            message,
	})
}

// configMapName renders the deterministic name of the ConfigMap rendered
// for a ZoneFile at a given serial.
func configMapName(zoneFileName string, serial uint32) string {
	return fmt.Sprintf("%s-%s", zoneFileName, strconv.FormatUint(uint64(serial), 10))
}

// isRoot reports whether domainName ends in a trailing dot, i.e. is a literal FQDN.
func isRoot(domainName string) bool {
	return strings.HasSuffix(domainName, ".")
}
