/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ZoneSpec defines the desired state of a Zone.
//
// Exactly one of ZoneRef or a fully-qualified (trailing-dot) DomainName
// must be set.
type ZoneSpec struct {
	// DomainName is either an unqualified label sequence, resolved relative
	// to ZoneRef's parent, or a fully-qualified name ending in ".".
	DomainName string `json:"domainName"`
	// ZoneRef points at the parent Zone this Zone's DomainName is relative to.
	// Mutually exclusive with a fully-qualified DomainName.
	// +optional
	ZoneRef *ZoneRef `json:"zoneRef,omitempty"`
	// Delegations list the namespaces, domain patterns and record types
	// this Zone permits sub-Zones and Records to claim. An empty list
	// denies all children.
	// +optional
	Delegations []Delegation `json:"delegations,omitempty"`
}

// ZoneStatus defines the observed state of a Zone.
type ZoneStatus struct {
	// FQDN is the resolved, absolute (trailing-dot) domain name of this Zone.
	// +optional
	FQDN *string `json:"fqdn,omitempty"`
	// Hash is a decimal-rendered 64-bit content hash over the set of
	// child Zones and Records bound to this Zone.
	// +optional
	Hash *string `json:"hash,omitempty"`
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// +optional
	ObservedGeneration *int64 `json:"observedGeneration,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:resource:scope=Namespaced

// +kubebuilder:printcolumn:name="Domain",type="string",JSONPath=".spec.domainName"
// +kubebuilder:printcolumn:name="FQDN",type="string",JSONPath=".status.fqdn"
// +kubebuilder:printcolumn:name="Hash",type="string",JSONPath=".status.hash"
// Zone is the Schema for the zones API.
type Zone struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ZoneSpec   `json:"spec,omitempty"`
	Status ZoneStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// ZoneList contains a list of Zone.
type ZoneList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Zone `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Zone{}, &ZoneList{})
}
